package client

import (
	"context"
	"log"
	"net/http"

	"attendsheets/models"
)

type qrStartParams struct {
	ClassID        string `json:"class_id"`
	AttendanceDate string `json:"attendance_date"`
}

type qrScanParams struct {
	ClassID string `json:"class_id"`
	QRCode  string `json:"qr_code"`
}

// StartQRSession opens a QR attendance round for a class the teacher owns.
func (c *Client) StartQRSession(ctx context.Context, classID string, attendanceDate string) (models.QRSession, error) {
	var envelope struct {
		Success bool             `json:"success"`
		Session models.QRSession `json:"session"`
	}
	if err := c.apiCall(ctx, http.MethodPost, "/qr/start", qrStartParams{ClassID: classID, AttendanceDate: attendanceDate}, &envelope); err != nil {
		log.Println("Error starting QR session:", err)
		return models.QRSession{}, err
	}
	return envelope.Session, nil
}

// QRCode polls the current rotating code for a class's active session.
func (c *Client) QRCode(ctx context.Context, classID string) (string, error) {
	var envelope struct {
		QRCode string `json:"qr_code"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/qr/"+classID, nil, &envelope); err != nil {
		log.Println("Error fetching QR code:", err)
		return "", err
	}
	return envelope.QRCode, nil
}

// ScanQR marks the logged-in student present for the session date.
func (c *Client) ScanQR(ctx context.Context, classID string, code string) (string, error) {
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Date    string `json:"date"`
	}
	if err := c.apiCall(ctx, http.MethodPost, "/qr/scan", qrScanParams{ClassID: classID, QRCode: code}, &envelope); err != nil {
		log.Println("Error scanning QR code:", err)
		return "", err
	}
	return envelope.Date, nil
}

// QRStopResult summarises a closed session.
type QRStopResult struct {
	Success      bool   `json:"success"`
	ScannedCount int    `json:"scanned_count"`
	AbsentCount  int    `json:"absent_count"`
	Date         string `json:"date"`
}

// StopQRSession closes the session and marks everyone who never scanned
// as absent.
func (c *Client) StopQRSession(ctx context.Context, classID string) (QRStopResult, error) {
	var result QRStopResult
	if err := c.apiCall(ctx, http.MethodPost, "/qr/stop/"+classID, nil, &result); err != nil {
		log.Println("Error stopping QR session:", err)
		return QRStopResult{}, err
	}
	return result, nil
}

// QRSessionStatus reports whether the teacher's class has a live session.
func (c *Client) QRSessionStatus(ctx context.Context, classID string) (bool, models.QRSession, error) {
	var envelope struct {
		Active  bool             `json:"active"`
		Session models.QRSession `json:"session"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/qr/session/"+classID, nil, &envelope); err != nil {
		log.Println("Error fetching QR session:", err)
		return false, models.QRSession{}, err
	}
	return envelope.Active, envelope.Session, nil
}
