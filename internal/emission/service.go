// Package emission implements factor resolution and the emission calculation
// engine: selecting the effective-dated factor for an activity/date pair,
// computing the CO2e result, and recording provenance and overrides.
package emission

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/carbontrail/backend/internal/errors"
	"github.com/carbontrail/backend/internal/models"
	"github.com/carbontrail/backend/internal/observability"
)

// Repository captures the persistence operations the engine needs.
type Repository interface {
	CreateFactor(factor *models.EmissionFactor) (bool, error)
	FindApplicableFactor(activityName, activityDate string) (*models.EmissionFactor, error)
	ListFactors() ([]*models.EmissionFactor, error)
	CreateRecord(record *models.EmissionRecord) error
	CreateRecordWithAudit(record *models.EmissionRecord, entry *models.AuditEntry) error
	ListRecords() ([]*models.EmissionRecord, error)
	ListAuditEntries(recordID int64) ([]*models.AuditEntry, error)
}

// Service orchestrates emission calculations over a factor and record store.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// ResolveFactor selects the factor version applicable to the activity on the
// given date. Validity intervals are not guaranteed non-overlapping; on
// overlap the version with the most recent valid_from wins. No factor is
// inferred or defaulted: a miss is a MISSING_FACTOR error naming the activity.
func (s *Service) ResolveFactor(activityName, activityDate string) (*models.EmissionFactor, error) {
	factor, err := s.repo.FindApplicableFactor(activityName, activityDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrMissingFactor,
				fmt.Sprintf("no emission factor found for %q", activityName))
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, "factor lookup failed", err)
	}
	return factor, nil
}

// SubmitInput is one activity occurrence to convert into an emission record.
type SubmitInput struct {
	ActivityDate string
	ActivityName string
	ActivityData float64
	Unit         string

	// OverrideCO2e replaces the factor-derived value when set. A nil pointer
	// means no override; so does a pointer to exactly 0, matching the
	// long-standing behavior downstream tooling depends on.
	OverrideCO2e   *float64
	OverrideReason string
}

// SubmitResult reports what the engine stored for a submission.
type SubmitResult struct {
	RecordID       int64   `json:"id"`
	CalculatedCO2e float64 `json:"calculated_co2e"`
	FactorUsed     float64 `json:"factor_used"`
	IsOverride     bool    `json:"is_override"`
	Record         *models.EmissionRecord `json:"-"`
}

// Submit resolves the applicable factor, computes the emission, and appends a
// record to the ledger. An override replaces the computed value and writes an
// audit entry in the same transaction as the record; this happens even when
// the override numerically equals the computed value. The record's scope is
// copied from the resolved factor regardless of override. Nothing is written
// when resolution fails.
func (s *Service) Submit(input SubmitInput) (*SubmitResult, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	factor, err := s.ResolveFactor(input.ActivityName, input.ActivityDate)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMissingFactor) {
			observability.RecordMissingFactor(input.ActivityName)
			s.logger.Warn("no emission factor for submission",
				zap.String("activity_name", input.ActivityName),
				zap.String("activity_date", input.ActivityDate))
		}
		return nil, err
	}

	baseValue := input.ActivityData * factor.CO2eFactor
	calculated := baseValue
	isOverride := input.OverrideCO2e != nil && *input.OverrideCO2e != 0
	if isOverride {
		calculated = *input.OverrideCO2e
	}

	record := &models.EmissionRecord{
		ActivityDate:     input.ActivityDate,
		ActivityName:     input.ActivityName,
		ActivityData:     input.ActivityData,
		Unit:             input.Unit,
		EmissionFactorID: &factor.ID,
		CalculatedCO2e:   calculated,
		Scope:            factor.Scope,
		IsOverride:       isOverride,
		OverrideReason:   input.OverrideReason,
	}

	if isOverride {
		entry := &models.AuditEntry{
			Action:   models.AuditActionOverride,
			OldValue: baseValue,
			NewValue: calculated,
			Reason:   input.OverrideReason,
		}
		if err := s.repo.CreateRecordWithAudit(record, entry); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to store emission record with audit entry", err)
		}
	} else {
		if err := s.repo.CreateRecord(record); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to store emission record", err)
		}
	}

	observability.RecordSubmission(factor.Scope, isOverride)
	s.logger.Info("emission record created",
		zap.Int64("record_id", record.ID),
		zap.String("activity_name", input.ActivityName),
		zap.Float64("calculated_co2e", calculated),
		zap.Bool("is_override", isOverride))

	return &SubmitResult{
		RecordID:       record.ID,
		CalculatedCO2e: calculated,
		FactorUsed:     factor.CO2eFactor,
		IsOverride:     isOverride,
		Record:         record,
	}, nil
}

// FactorInput is one factor version to insert.
type FactorInput struct {
	ActivityName string  `json:"activity_name"`
	Unit         string  `json:"unit"`
	CO2eFactor   float64 `json:"co2e_factor"`
	Scope        int     `json:"scope"`
	Source       string  `json:"source"`
	ValidFrom    string  `json:"valid_from"`
	ValidTo      string  `json:"valid_to"`
}

// AddFactor validates and stores a factor version. Inserting a version that
// already exists with identical fields is a silent no-op.
func (s *Service) AddFactor(input FactorInput) (*models.EmissionFactor, error) {
	if err := validateFactor(input); err != nil {
		return nil, err
	}

	factor := factorFromInput(input)
	inserted, err := s.repo.CreateFactor(factor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to store emission factor", err)
	}
	if !inserted {
		s.logger.Debug("duplicate factor ignored",
			zap.String("activity_name", input.ActivityName),
			zap.String("valid_from", input.ValidFrom))
	}
	return factor, nil
}

// BulkError reports one rejected element of a bulk insert by its input index.
type BulkError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkResult summarizes a bulk factor insert.
type BulkResult struct {
	BatchID  string      `json:"batch_id"`
	Inserted int         `json:"inserted"`
	Errors   []BulkError `json:"errors"`
}

// BulkAddFactors inserts each element independently. Malformed elements are
// collected into the error list by input index without aborting the batch.
// Accepted duplicates count as inserted, same as a single idempotent insert.
func (s *Service) BulkAddFactors(inputs []FactorInput) BulkResult {
	result := BulkResult{
		BatchID: uuid.NewString(),
		Errors:  []BulkError{},
	}

	for i, input := range inputs {
		if err := validateFactor(input); err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Error: err.Error()})
			continue
		}
		if _, err := s.repo.CreateFactor(factorFromInput(input)); err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Error: err.Error()})
			continue
		}
		result.Inserted++
	}

	s.logger.Info("bulk factor insert complete",
		zap.String("batch_id", result.BatchID),
		zap.Int("inserted", result.Inserted),
		zap.Int("errors", len(result.Errors)))
	return result
}

// ListFactors returns all factor versions for display.
func (s *Service) ListFactors() ([]*models.EmissionFactor, error) {
	factors, err := s.repo.ListFactors()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to list emission factors", err)
	}
	return factors, nil
}

// ListRecords returns the ledger newest activity first, joined with factor
// display fields.
func (s *Service) ListRecords() ([]*models.EmissionRecord, error) {
	records, err := s.repo.ListRecords()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to list emission records", err)
	}
	return records, nil
}

// AuditTrail returns the audit entries for one record.
func (s *Service) AuditTrail(recordID int64) ([]*models.AuditEntry, error) {
	entries, err := s.repo.ListAuditEntries(recordID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to list audit entries", err)
	}
	return entries, nil
}

func factorFromInput(input FactorInput) *models.EmissionFactor {
	return &models.EmissionFactor{
		ActivityName: input.ActivityName,
		Unit:         input.Unit,
		CO2eFactor:   input.CO2eFactor,
		Scope:        input.Scope,
		Source:       input.Source,
		ValidFrom:    input.ValidFrom,
		ValidTo:      input.ValidTo,
	}
}

func validateFactor(input FactorInput) error {
	switch {
	case input.ActivityName == "":
		return apperrors.New(apperrors.ErrValidation, "activity_name is required")
	case input.Unit == "":
		return apperrors.New(apperrors.ErrValidation, "unit is required")
	case input.CO2eFactor <= 0:
		return apperrors.New(apperrors.ErrValidation, "co2e_factor must be positive")
	case input.Scope < 1 || input.Scope > 3:
		return apperrors.New(apperrors.ErrValidation, "scope must be 1, 2 or 3")
	case input.Source == "":
		return apperrors.New(apperrors.ErrValidation, "source is required")
	case input.ValidFrom == "":
		return apperrors.New(apperrors.ErrValidation, "valid_from is required")
	}
	if _, err := time.Parse(models.DateLayout, input.ValidFrom); err != nil {
		return apperrors.New(apperrors.ErrValidation, "valid_from must be a YYYY-MM-DD date")
	}
	if input.ValidTo != "" {
		if _, err := time.Parse(models.DateLayout, input.ValidTo); err != nil {
			return apperrors.New(apperrors.ErrValidation, "valid_to must be a YYYY-MM-DD date")
		}
	}
	return nil
}

func validateSubmit(input SubmitInput) error {
	if input.ActivityName == "" {
		return apperrors.New(apperrors.ErrInvalid, "activity_name is required")
	}
	if _, err := time.Parse(models.DateLayout, input.ActivityDate); err != nil {
		return apperrors.New(apperrors.ErrInvalid, "activity_date must be a YYYY-MM-DD date")
	}
	return nil
}
