package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"attendsheets/models"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	token, err := GenerateAccessToken("teacher@example.com", "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	r := httptest.NewRequest("GET", "/classes", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	email, role, err := VerifyToken(r)
	require.NoError(t, err)
	require.Equal(t, "teacher@example.com", email)
	require.Empty(t, role)
}

func TestAccessTokenStudentRole(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	token, err := GenerateAccessToken("kid@example.com", "student")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/student/classes", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	email, role, err := VerifyToken(r)
	require.NoError(t, err)
	require.Equal(t, "kid@example.com", email)
	require.Equal(t, "student", role)
}

func TestVerifyTokenRejectsMissingHeader(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	r := httptest.NewRequest("GET", "/classes", nil)
	_, _, err := VerifyToken(r)
	require.Error(t, err)

	r.Header.Set("Authorization", "Bearer not.a.token")
	_, _, err = VerifyToken(r)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2hunter2", hash)
	require.True(t, ComparePasswords(hash, "hunter2hunter2"))
	require.False(t, ComparePasswords(hash, "wrong-password"))
}

func TestGenerateVerificationCode(t *testing.T) {
	code, err := GenerateVerificationCode()
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestGenerateQRCode(t *testing.T) {
	code := GenerateQRCode()
	require.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), code)
	require.NotEqual(t, code, GenerateQRCode())
}

func TestAttendancePercentage(t *testing.T) {
	require.Equal(t, 0.0, AttendancePercentage(nil))

	attendance := map[string]models.AttendanceMark{
		"2026-01-05": models.MarkPresent,
		"2026-01-06": models.MarkLate,
		"2026-01-07": models.MarkAbsent,
		"2026-01-08": models.MarkPresent,
	}
	require.Equal(t, 75.0, AttendancePercentage(attendance))
}

func TestCalculateStudentStatistics(t *testing.T) {
	record := models.StudentRecord{
		Attendance: map[string]models.AttendanceMark{
			"2026-01-05": models.MarkPresent,
			"2026-01-06": models.MarkPresent,
			"2026-01-07": models.MarkLate,
			"2026-01-08": models.MarkAbsent,
		},
	}

	stats := CalculateStudentStatistics(record, nil)
	require.Equal(t, 4, stats.TotalClasses)
	require.Equal(t, 2, stats.Present)
	require.Equal(t, 1, stats.Absent)
	require.Equal(t, 1, stats.Late)
	require.Equal(t, 75.0, stats.Percentage)
	require.Equal(t, "at risk", stats.Status)

	lenient := &models.AttendanceThresholds{Excellent: 90, Good: 75, Moderate: 60, AtRisk: 50}
	stats = CalculateStudentStatistics(record, lenient)
	require.Equal(t, "good", stats.Status)
}

func TestCalculateStudentStatisticsNoData(t *testing.T) {
	stats := CalculateStudentStatistics(models.StudentRecord{}, nil)
	require.Equal(t, "no data", stats.Status)
	require.Zero(t, stats.TotalClasses)
	require.Zero(t, stats.Percentage)
}

func TestCalculateClassStatistics(t *testing.T) {
	students := []models.StudentRecord{
		{ID: 1, Attendance: map[string]models.AttendanceMark{
			"2026-01-05": models.MarkPresent,
			"2026-01-06": models.MarkPresent,
		}},
		{ID: 2, Attendance: map[string]models.AttendanceMark{
			"2026-01-05": models.MarkAbsent,
			"2026-01-06": models.MarkAbsent,
		}},
		{ID: 3}, // never marked, excluded from the attendance sum
	}

	stats := CalculateClassStatistics(students, nil)
	require.Equal(t, 3, stats.TotalStudents)
	require.Equal(t, round3(100.0/3), stats.AvgAttendance)
	require.Equal(t, 1, stats.ExcellentCount)
	require.Equal(t, 1, stats.AtRiskCount)
	require.NotEmpty(t, stats.LastCalculated)
}

func TestCalculateClassStatisticsEmpty(t *testing.T) {
	stats := CalculateClassStatistics(nil, nil)
	require.Zero(t, stats.TotalStudents)
	require.Zero(t, stats.AvgAttendance)
}
