// Package reconciler keeps derived role-assignment counts consistent with
// the actual assignments and drives manual reprocessing of failed
// integration synchronizations.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iam-console/iam-console/internal/db/controller/audit"
	"github.com/iam-console/iam-console/internal/db/models"
)

var (
	// ErrNotReprocesable is returned when a reprocess is requested for a
	// record that is not in a retryable failed state. The record is left
	// untouched, no transition occurs.
	ErrNotReprocesable = errors.New("integration status is not reprocessable")
	// ErrIntegrationTimeout is returned when the external system did not
	// confirm the re-launched synchronization before the caller's deadline.
	ErrIntegrationTimeout = errors.New("integration reprocess timed out")
	// ErrStatusNotFound is returned when the integration record does not exist.
	ErrStatusNotFound = errors.New("integration status not found")
)

// SyncFunc models the external system completing a re-launched
// synchronization. It returns nil on success or the failure reason.
// The reconciler itself never simulates the external call; callers
// supply it and may cancel through the context.
type SyncFunc func(ctx context.Context) error

// Service reads the store and reconciles derived state.
// It never mutates users or roles beyond the derived count column.
type Service struct {
	db *gorm.DB
}

// NewService creates a new reconciler service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecomputeAssignedCounts recounts, for every role, the distinct users
// holding it and persists the counts so subsequent reads observe them.
// Returns the computed mapping of role id to count. The counts are
// recomputed lazily on role reads and explicitly after assignment
// changes; the stored column is a materialized view, never authoritative.
func (s *Service) RecomputeAssignedCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roles []models.Role
		if err := tx.Find(&roles).Error; err != nil {
			return fmt.Errorf("failed to load roles: %w", err)
		}

		for i := range roles {
			r := &roles[i]

			var count int64
			if err := tx.Model(&models.UserRole{}).
				Distinct("user_id").
				Where("sistema = ? AND role_name = ?", r.Sistema, r.Nombre).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count assignments for role %s: %w", r.ID, err)
			}

			counts[r.ID] = int(count)

			if r.UsuariosAsignados == int(count) {
				continue
			}

			if err := tx.Model(&models.Role{}).
				Where("id = ?", r.ID).
				Update("usuarios_asignados", count).Error; err != nil {
				return fmt.Errorf("failed to store count for role %s: %w", r.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// FindReprocessable returns the integration records eligible for manual
// reprocessing: failed with a retryable failure class.
func (s *Service) FindReprocessable(ctx context.Context) ([]models.IntegrationStatus, error) {
	var statuses []models.IntegrationStatus

	err := s.db.WithContext(ctx).
		Where("estado = ? AND reprocesable = ?", models.SyncFallido, true).
		Order("sistema ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reprocessable statuses: %w", err)
	}

	return statuses, nil
}

// Reprocess re-launches a failed synchronization. The record transitions
// to Procesando immediately, then to exactly one final state per
// invocation: Exitoso when sync confirms, Fallido when sync reports a
// failure or the context is cancelled before confirmation. A record is
// never left in Procesando; caller cancellation reverts it to Fallido
// with the timeout recorded in the error field.
func (s *Service) Reprocess(
	ctx context.Context,
	id string,
	sync SyncFunc,
	responsable string,
) (*models.IntegrationStatus, error) {
	status, err := s.markProcessing(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().Str("id", id).Str("sistema", status.Sistema).Msg("reprocess launched")

	done := make(chan error, 1)

	go func() {
		done <- sync(ctx)
	}()

	var (
		outcome string
		syncErr error
	)

	select {
	case syncErr = <-done:
		if syncErr == nil {
			outcome = outcomeSuccess
		} else {
			outcome = outcomeFailure
		}
	case <-ctx.Done():
		outcome = outcomeTimeout
		syncErr = fmt.Errorf("%w: %v", ErrIntegrationTimeout, ctx.Err())
	}

	// The final transition must not be lost to the same cancellation
	// that aborted the sync, so it runs on the bare handle.
	final, completeErr := s.complete(status, outcome, syncErr, responsable)
	if completeErr != nil {
		return nil, completeErr
	}

	reprocessCounter(status.Sistema, outcome)

	if outcome == outcomeTimeout {
		return final, syncErr
	}

	return final, nil
}

// markProcessing guards the Fallido -> Procesando transition.
// It rejects records that are not in a retryable failed state before
// touching anything, and the state check plus update run in one
// transaction so concurrent invocations launch at most one reprocess.
func (s *Service) markProcessing(ctx context.Context, id string) (*models.IntegrationStatus, error) {
	var status models.IntegrationStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&status, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStatusNotFound
			}
			return err
		}

		if !status.CanReprocess() {
			return fmt.Errorf("%w: %s is %s", ErrNotReprocesable, id, status.Estado)
		}

		status.Estado = models.SyncProcesando
		status.Error = ""

		return tx.Save(&status).Error
	})
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// complete applies the single final transition out of Procesando.
func (s *Service) complete(
	status *models.IntegrationStatus,
	outcome string,
	syncErr error,
	responsable string,
) (*models.IntegrationStatus, error) {
	now := time.Now().UTC()

	switch outcome {
	case outcomeSuccess:
		status.Estado = models.SyncExitoso
		status.Error = ""
		status.Reprocesable = false
	default:
		status.Estado = models.SyncFallido
		status.Error = syncErr.Error()
		status.Reprocesable = true
	}

	status.UltimaSincronizacion = now

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Guard on Procesando so this invocation applies exactly one
		// final transition even under concurrent writers.
		result := tx.Model(&models.IntegrationStatus{}).
			Where("id = ? AND estado = ?", status.ID, models.SyncProcesando).
			Updates(map[string]any{
				"estado":                status.Estado,
				"error":                 status.Error,
				"reprocesable":          status.Reprocesable,
				"ultima_sincronizacion": status.UltimaSincronizacion,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s already transitioned", ErrStatusNotFound, status.ID)
		}

		detalle := fmt.Sprintf("Reproceso de integración %s finalizado: %s", status.Sistema, status.Estado)
		if syncErr != nil {
			detalle = fmt.Sprintf("Reproceso de integración %s fallido: %v", status.Sistema, syncErr)
		}

		return audit.Append(tx, &models.AuditEntry{
			Usuario:     status.Sistema,
			Accion:      models.AccionReprocesoManual,
			Sistema:     status.Sistema,
			Detalle:     detalle,
			Responsable: responsable,
		})
	})
	if err != nil {
		log.Error().Err(err).Str("id", status.ID).Msg("failed to record final reprocess transition")
		return nil, err
	}

	return status, nil
}
