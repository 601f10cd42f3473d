package models

import (
	"encoding/json"
	"strconv"
)

// AttendanceMark is a single cell in the attendance sheet.
type AttendanceMark string

const (
	MarkPresent AttendanceMark = "P"
	MarkAbsent  AttendanceMark = "A"
	MarkLate    AttendanceMark = "L"
)

// StudentRecord is one row of a class sheet. It is an open record:
// frontends attach arbitrary extra fields (custom column values, notes)
// which must survive a decode/encode round trip, so JSON handling is
// implemented by hand and unknown keys are kept in Extra.
type StudentRecord struct {
	ID         int64
	RollNo     string
	Name       string
	Email      string
	Attendance map[string]AttendanceMark
	Extra      map[string]interface{}
}

func (s *StudentRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = StudentRecord{Attendance: map[string]AttendanceMark{}}
	for key, value := range raw {
		switch key {
		case "id":
			s.ID = coerceInt64(value)
		case "rollNo":
			if err := json.Unmarshal(value, &s.RollNo); err != nil {
				return err
			}
		case "name":
			if err := json.Unmarshal(value, &s.Name); err != nil {
				return err
			}
		case "email":
			if err := json.Unmarshal(value, &s.Email); err != nil {
				return err
			}
		case "attendance":
			if err := json.Unmarshal(value, &s.Attendance); err != nil {
				return err
			}
			if s.Attendance == nil {
				s.Attendance = map[string]AttendanceMark{}
			}
		default:
			var v interface{}
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			if s.Extra == nil {
				s.Extra = map[string]interface{}{}
			}
			s.Extra[key] = v
		}
	}
	return nil
}

func (s StudentRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Extra)+5)
	for key, value := range s.Extra {
		out[key] = value
	}
	out["id"] = s.ID
	out["rollNo"] = s.RollNo
	out["name"] = s.Name
	if s.Email != "" {
		out["email"] = s.Email
	}
	attendance := s.Attendance
	if attendance == nil {
		attendance = map[string]AttendanceMark{}
	}
	out["attendance"] = attendance
	return json.Marshal(out)
}

// coerceInt64 accepts ids serialized as numbers or strings; sloppy
// producers send both.
func coerceInt64(raw json.RawMessage) int64 {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if v, err := strconv.ParseInt(str, 10, 64); err == nil {
			return v
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return int64(f)
		}
	}
	return 0
}
