package utils

import (
	"math"
	"time"

	"attendsheets/models"
)

// serverThresholds are the cut-points used for derived statistics when a
// class has none stored. These are stricter than the client-side sheet
// defaults on purpose: dashboards flag students earlier than sheets do.
func serverThresholds() models.AttendanceThresholds {
	return models.AttendanceThresholds{Excellent: 95, Good: 90, Moderate: 85, AtRisk: 85}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// AttendancePercentage counts late arrivals as attended.
func AttendancePercentage(attendance map[string]models.AttendanceMark) float64 {
	if len(attendance) == 0 {
		return 0
	}
	attended := 0
	for _, mark := range attendance {
		if mark == models.MarkPresent || mark == models.MarkLate {
			attended++
		}
	}
	return float64(attended) / float64(len(attendance)) * 100
}

// CalculateClassStatistics derives the dashboard numbers for a class from
// the students it currently shows. Statistics are computed on read and
// never stored.
func CalculateClassStatistics(students []models.StudentRecord, thresholds *models.AttendanceThresholds) models.ClassStatistics {
	if len(students) == 0 {
		return models.ClassStatistics{}
	}

	t := serverThresholds()
	if !thresholds.IsZero() {
		t = *thresholds
	}

	atRisk := 0
	excellent := 0
	totalAttendance := 0.0
	for _, student := range students {
		if len(student.Attendance) == 0 {
			continue
		}
		percentage := AttendancePercentage(student.Attendance)
		totalAttendance += percentage

		if percentage >= t.Excellent {
			excellent++
		} else if percentage < t.Moderate {
			atRisk++
		}
	}

	return models.ClassStatistics{
		TotalStudents:  len(students),
		AvgAttendance:  round3(totalAttendance / float64(len(students))),
		AtRiskCount:    atRisk,
		ExcellentCount: excellent,
		LastCalculated: time.Now().UTC().Format(time.RFC3339),
	}
}

// CalculateStudentStatistics summarises one student's attendance against
// the class thresholds.
func CalculateStudentStatistics(record models.StudentRecord, thresholds *models.AttendanceThresholds) models.StudentStatistics {
	if len(record.Attendance) == 0 {
		return models.StudentStatistics{Status: "no data"}
	}

	t := serverThresholds()
	if !thresholds.IsZero() {
		t = *thresholds
	}

	stats := models.StudentStatistics{TotalClasses: len(record.Attendance)}
	for _, mark := range record.Attendance {
		switch mark {
		case models.MarkPresent:
			stats.Present++
		case models.MarkAbsent:
			stats.Absent++
		case models.MarkLate:
			stats.Late++
		}
	}
	stats.Percentage = round3(float64(stats.Present+stats.Late) / float64(stats.TotalClasses) * 100)

	switch {
	case stats.Percentage >= t.Excellent:
		stats.Status = "excellent"
	case stats.Percentage >= t.Good:
		stats.Status = "good"
	case stats.Percentage >= t.Moderate:
		stats.Status = "moderate"
	default:
		stats.Status = "at risk"
	}
	return stats
}
