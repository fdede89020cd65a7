package models

import (
	"encoding/json"
	"time"
)

// Form field names as posted by the browser.
const (
	FieldWebsite      = "website"
	FieldUsername     = "username"
	FieldReceiverName = "receiverName"
	FieldHouseNo      = "houseNo"
	FieldRoad         = "road"
	FieldSoi          = "soi"
	FieldVillage      = "village"
	FieldSubdistrict  = "subdistrict"
	FieldDistrict     = "district"
	FieldProvince     = "province"
	FieldPostcode     = "postcode"
	FieldPhone        = "phone"
)

// FormState holds the values of one address form session.
// District and Province use 0 for unset; Subdistrict uses "".
type FormState struct {
	Website      string `json:"website"`
	Username     string `json:"username"`
	ReceiverName string `json:"receiverName"`
	HouseNo      string `json:"houseNo"`
	Road         string `json:"road"`
	Soi          string `json:"soi"`
	Village      string `json:"village"`
	Subdistrict  string `json:"subdistrict"`
	District     int    `json:"district"`
	Province     int    `json:"province"`
	Postcode     string `json:"postcode"`
	Phone        string `json:"phone"`
}

// FormSession is the server-side record of an active form.
type FormSession struct {
	ID          string    `json:"id"`
	SiteName    string    `json:"siteName"`
	Site        *Site     `json:"site,omitempty"`
	InvalidSite bool      `json:"invalidSite"`
	State       FormState `json:"state"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// PostcodePending marks a subdistrict whose postal code could not be
	// resolved when it was chosen.
	PostcodePending bool `json:"postcodePending,omitempty"`
}

// PrizePayload is the body posted to the prize-fulfillment API.
type PrizePayload struct {
	Site        string `json:"site,omitempty"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Phone       string `json:"phone"`
	Provinces   string `json:"provinces"`
	District    string `json:"district"`
	SubDistrict string `json:"subDistrict"`
	Village     string `json:"village"`
	Alley       string `json:"alley"`
	Road        string `json:"road"`
	House       string `json:"house"`
	PostalCode  string `json:"postalCode"`
	Status      string `json:"status"`
}

// PrizeStatusPending is the only status the form ever submits.
const PrizeStatusPending = "pending"

// SubmissionStatus is the outcome of one forwarding attempt.
type SubmissionStatus string

const (
	SubmissionSuccess  SubmissionStatus = "Success"
	SubmissionRejected SubmissionStatus = "Rejected"
	SubmissionFailed   SubmissionStatus = "Failed"
)

// Submission is an audit record of one forwarding attempt.
type Submission struct {
	ID           int              `json:"id" db:"id"`
	SubmissionID string           `json:"submissionId" db:"submission_id"`
	SessionID    string           `json:"sessionId" db:"session_id"`
	SiteName     string           `json:"siteName" db:"site_name"`
	Username     string           `json:"username" db:"username"`
	Payload      []byte           `json:"-" db:"payload"`
	Status       SubmissionStatus `json:"status" db:"status"`
	HTTPStatus   int              `json:"httpStatus" db:"http_status"`
	ErrorMessage *string          `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}

// SubmissionResponse is the audit record as shown to the submitting session.
type SubmissionResponse struct {
	SubmissionID string           `json:"submissionId"`
	Site         string           `json:"site"`
	Status       SubmissionStatus `json:"status"`
	HTTPStatus   int              `json:"httpStatus"`
	ErrorMessage *string          `json:"errorMessage,omitempty"`
	Payload      json.RawMessage  `json:"payload"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ToResponse converts a Submission to its response shape.
func (s Submission) ToResponse() SubmissionResponse {
	payload := json.RawMessage("null")
	if len(s.Payload) > 0 {
		payload = append(json.RawMessage(nil), s.Payload...)
	}
	return SubmissionResponse{
		SubmissionID: s.SubmissionID,
		Site:         s.SiteName,
		Status:       s.Status,
		HTTPStatus:   s.HTTPStatus,
		ErrorMessage: s.ErrorMessage,
		Payload:      payload,
		CreatedAt:    s.CreatedAt,
	}
}
