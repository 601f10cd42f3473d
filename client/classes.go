package client

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"attendsheets/models"
)

// flexID tolerates the id arriving as a JSON number or a string.
type flexID int

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid class id %q", s)
	}
	*f = flexID(int(n))
	return nil
}

// backendClass is the decode-side view of a class record. The id may
// arrive under class_id or id, and custom columns under either spelling;
// class_id and custom_columns win when both are present.
type backendClass struct {
	ClassID      *flexID                      `json:"class_id"`
	ID           *flexID                      `json:"id"`
	Name         string                       `json:"name"`
	Students     []models.StudentRecord       `json:"students"`
	ColumnsSnake []models.CustomColumn        `json:"custom_columns"`
	ColumnsCamel []models.CustomColumn        `json:"customColumns"`
	Thresholds   *models.AttendanceThresholds `json:"thresholds"`
}

func classFromBackend(raw backendClass) models.Class {
	cls := models.Class{Name: raw.Name}

	if raw.ClassID != nil {
		cls.ID = int(*raw.ClassID)
	} else if raw.ID != nil {
		cls.ID = int(*raw.ID)
	}

	cls.Students = raw.Students
	if cls.Students == nil {
		cls.Students = []models.StudentRecord{}
	}

	switch {
	case raw.ColumnsSnake != nil:
		cls.CustomColumns = raw.ColumnsSnake
	case raw.ColumnsCamel != nil:
		cls.CustomColumns = raw.ColumnsCamel
	default:
		cls.CustomColumns = []models.CustomColumn{}
	}

	if raw.Thresholds.IsZero() {
		defaults := models.DefaultThresholds()
		cls.Thresholds = &defaults
	} else {
		cls.Thresholds = raw.Thresholds
	}
	return cls
}

// classPayload is the canonical write shape for create and update.
type classPayload struct {
	ClassID       string                      `json:"class_id"`
	Name          string                      `json:"name"`
	Thresholds    models.AttendanceThresholds `json:"thresholds"`
	CustomColumns []models.CustomColumn       `json:"custom_columns"`
}

func classToBackend(cls models.Class) classPayload {
	thresholds := models.DefaultThresholds()
	if !cls.Thresholds.IsZero() {
		thresholds = *cls.Thresholds
	}
	columns := cls.CustomColumns
	if columns == nil {
		columns = []models.CustomColumn{}
	}
	return classPayload{
		ClassID:       strconv.Itoa(cls.ID),
		Name:          cls.Name,
		Thresholds:    thresholds,
		CustomColumns: columns,
	}
}

// GetAllClasses lists the caller's classes.
func (c *Client) GetAllClasses(ctx context.Context) ([]models.Class, error) {
	var envelope struct {
		Classes []backendClass `json:"classes"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/classes", nil, &envelope); err != nil {
		log.Println("Error fetching classes:", err)
		return nil, err
	}

	classes := make([]models.Class, 0, len(envelope.Classes))
	for _, raw := range envelope.Classes {
		classes = append(classes, classFromBackend(raw))
	}
	return classes, nil
}

func (c *Client) GetClass(ctx context.Context, classID int) (models.Class, error) {
	var envelope struct {
		Class *backendClass `json:"class"`
	}
	err := c.apiCall(ctx, http.MethodGet, "/classes/"+strconv.Itoa(classID), nil, &envelope)
	if err != nil {
		log.Println("Error fetching class:", err)
		return models.Class{}, err
	}
	if envelope.Class == nil {
		err := &APIError{Status: http.StatusNotFound, Message: "Class not found"}
		log.Println("Error fetching class:", err)
		return models.Class{}, err
	}
	return classFromBackend(*envelope.Class), nil
}

func (c *Client) CreateClass(ctx context.Context, cls models.Class) (models.Class, error) {
	var envelope struct {
		Success bool          `json:"success"`
		Class   *backendClass `json:"class"`
	}
	err := c.apiCall(ctx, http.MethodPost, "/classes", classToBackend(cls), &envelope)
	if err != nil {
		log.Println("Error creating class:", err)
		return models.Class{}, err
	}
	if envelope.Class == nil {
		return cls, nil
	}
	return classFromBackend(*envelope.Class), nil
}

func (c *Client) UpdateClass(ctx context.Context, classID int, cls models.Class) (models.Class, error) {
	var envelope struct {
		Success bool          `json:"success"`
		Class   *backendClass `json:"class"`
	}
	err := c.apiCall(ctx, http.MethodPut, "/classes/"+strconv.Itoa(classID), classToBackend(cls), &envelope)
	if err != nil {
		log.Println("Error updating class:", err)
		return models.Class{}, err
	}
	if envelope.Class == nil {
		return cls, nil
	}
	return classFromBackend(*envelope.Class), nil
}

func (c *Client) DeleteClass(ctx context.Context, classID int) (bool, error) {
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err := c.apiCall(ctx, http.MethodDelete, "/classes/"+strconv.Itoa(classID), nil, &envelope)
	if err != nil {
		log.Println("Error deleting class:", err)
		return false, err
	}
	return envelope.Success, nil
}

// SyncClasses reconciles a local class list against the backend with a
// create-or-update sweep: classes the backend does not know are created,
// everything else is updated, last write wins. Calls run sequentially in
// input order and nothing is ever deleted. Returns the backend's list as
// re-fetched after the sweep.
func (c *Client) SyncClasses(ctx context.Context, local []models.Class) ([]models.Class, error) {
	remote, err := c.GetAllClasses(ctx)
	if err != nil {
		return nil, err
	}

	remoteIDs := make(map[string]bool, len(remote))
	for _, cls := range remote {
		remoteIDs[strconv.Itoa(cls.ID)] = true
	}

	for _, cls := range local {
		if remoteIDs[strconv.Itoa(cls.ID)] {
			_, err = c.UpdateClass(ctx, cls.ID, cls)
		} else {
			_, err = c.CreateClass(ctx, cls)
		}
		if err != nil {
			log.Println("Error syncing class:", err)
			return nil, err
		}
	}

	return c.GetAllClasses(ctx)
}

// LoadClasses is GetAllClasses with failure absorbed: any error yields
// an empty list instead of propagating.
func (c *Client) LoadClasses(ctx context.Context) []models.Class {
	classes, err := c.GetAllClasses(ctx)
	if err != nil {
		return []models.Class{}
	}
	return classes
}
