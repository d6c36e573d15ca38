package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LogDateLayout is the calendar-day key of a daily log, in the driver's home terminal zone.
const LogDateLayout = "2006-01-02"

type CertificationMethod string

const (
	CertifyElectronic CertificationMethod = "ELECTRONIC"
	CertifyPIN        CertificationMethod = "PIN"
	CertifyBiometric  CertificationMethod = "BIOMETRIC"
)

// ParseCertificationMethod accepts the method case-insensitively; empty means ELECTRONIC.
func ParseCertificationMethod(s string) (CertificationMethod, error) {
	switch m := CertificationMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return CertifyElectronic, nil
	case CertifyElectronic, CertifyPIN, CertifyBiometric:
		return m, nil
	}
	return "", fmt.Errorf("unknown certification method %q", s)
}

// LogCertification records that a driver attested one day's log as true and complete.
// A later change to that day's entries voids it.
type LogCertification struct {
	DriverID    int
	LogDate     string
	CertifiedAt time.Time
	Method      CertificationMethod
}

// LogID names a daily log as "<driver_id>-<YYYY-MM-DD>".
func LogID(driverID int, logDate string) string {
	return strconv.Itoa(driverID) + "-" + logDate
}

// ParseLogID splits a LogID into driver id and log date.
func ParseLogID(id string) (int, string, error) {
	head, date, ok := strings.Cut(strings.TrimSpace(id), "-")
	if !ok {
		return 0, "", &ValidationError{Field: "log_id", Reason: "must look like <driver_id>-<YYYY-MM-DD>"}
	}
	driverID, err := strconv.Atoi(head)
	if err != nil || driverID < 1 {
		return 0, "", &ValidationError{Field: "log_id", Reason: "driver id must be a positive integer"}
	}
	if _, err := time.Parse(LogDateLayout, date); err != nil {
		return 0, "", &ValidationError{Field: "log_id", Reason: "log date must be YYYY-MM-DD"}
	}
	return driverID, date, nil
}
