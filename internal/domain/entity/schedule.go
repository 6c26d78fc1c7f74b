// internal/domain/entity/schedule.go
package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Assignment is the driver currently holding a booking
type Assignment struct {
	DriverName string `json:"driverName" bson:"driverName"`
	CellPhone  string `json:"cellPhone" bson:"cellPhone"`
}

// ETA is the estimated flight arrival stored by the ETA worker
type ETA struct {
	Est       string `json:"est" bson:"est"`             // "2006-01-02 15:04:05" Manila time
	Timestamp int64  `json:"timestamp" bson:"timestamp"` // unix millis of the computation
}

// Schedule is one dispatch booking
type Schedule struct {
	TransactionID string `json:"transactionID" bson:"transactionID" validate:"required"`
	Date          string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" bson:"time"`

	ClientName    string     `json:"clientName" bson:"clientName"`
	ContactNumber string     `json:"contactNumber" bson:"contactNumber"`
	FlightNumber  string     `json:"flightNumber" bson:"flightNumber"`
	TripType      string     `json:"tripType" bson:"tripType"`
	Pickup        string     `json:"pickup" bson:"pickup"`
	DropOff       string     `json:"dropOff" bson:"dropOff"`
	Pax           FlexString `json:"pax" bson:"pax"`
	Luggage       FlexString `json:"luggage" bson:"luggage"`
	Note          string     `json:"note" bson:"note"`

	UnitType      string `json:"unitType" bson:"unitType"`
	TransportUnit string `json:"transportUnit" bson:"transportUnit"`
	PlateNumber   string `json:"plateNumber" bson:"plateNumber"`
	Color         string `json:"color" bson:"color"`

	Current Assignment `json:"current" bson:"current"`
	Status  Status     `json:"status" bson:"status"`

	Amount      FlexString `json:"amount" bson:"amount"`
	DriverRate  FlexString `json:"driverRate" bson:"driverRate"`
	BookingType string     `json:"bookingType" bson:"bookingType"`
	Company     string     `json:"company" bson:"company"`

	ETA *ETA `json:"ETA,omitempty" bson:"ETA,omitempty"`
}

// TransportUnit is a vehicle of the fleet
type TransportUnit struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	UnitType string `json:"unitType" bson:"unitType"`
	Color    string `json:"color" bson:"color"`
	PlateNo  string `json:"plateNo" bson:"plateNo"`
}

// User is a roster entry; drivers are users with role "driver"
type User struct {
	UID         string `json:"uid" bson:"_id"`
	FirstName   string `json:"firstName" bson:"firstName"`
	MiddleName  string `json:"middleName" bson:"middleName"`
	LastName    string `json:"lastName" bson:"lastName"`
	Email       string `json:"email" bson:"email"`
	Phone       string `json:"phone" bson:"phone"`
	Role        string `json:"role" bson:"role"`
	Active      bool   `json:"active" bson:"active"`
	DefaultUnit string `json:"defaultUnit,omitempty" bson:"defaultUnit,omitempty"`
}

// DirectoryEntry is the read-only driver view of a user
type DirectoryEntry struct {
	FullName  string
	CellPhone string
}

// FlexString holds fields that sheets and older records store either as
// numbers or as text (pax, luggage, amounts). It always marshals as text.
type FlexString string

// UnmarshalJSON accepts strings, numbers and null
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// UnmarshalBSONValue accepts strings and numeric BSON values
func (f *FlexString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		*f = FlexString(raw.StringValue())
	case bson.TypeInt32:
		*f = FlexString(strconv.FormatInt(int64(raw.Int32()), 10))
	case bson.TypeInt64:
		*f = FlexString(strconv.FormatInt(raw.Int64(), 10))
	case bson.TypeDouble:
		*f = FlexString(strconv.FormatFloat(raw.Double(), 'f', -1, 64))
	default:
		*f = ""
	}
	return nil
}

// Int returns the numeric value, or def when the field is empty or not a number
func (f FlexString) Int(def int) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return def
	}
	return int(n)
}

// String returns the raw text
func (f FlexString) String() string {
	return string(f)
}
