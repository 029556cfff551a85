package service

import "errors"

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrApplicantNotFound  = errors.New("applicant not found")
	ErrCreditItemNotFound = errors.New("credit item not found")
	ErrApplicantLimit     = errors.New("applicant limit reached")
	ErrReportNotFound     = errors.New("report not found")
)
