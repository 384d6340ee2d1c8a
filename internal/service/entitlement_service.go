package service

import (
	"errors"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/model"
	"github.com/examgate/examgate/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EntitlementService grants exam access. It stands in for the external
// purchase-verification flow; granting twice is a no-op returning the
// original grant.
type EntitlementService interface {
	Grant(req dto.EntitlementCreateDTO) (*dto.EntitlementDTO, error)
}

type entitlementService struct {
	entitlementRepo repository.EntitlementRepository
}

func NewEntitlementService(entitlementRepo repository.EntitlementRepository) EntitlementService {
	return &entitlementService{entitlementRepo: entitlementRepo}
}

func (s *entitlementService) Grant(req dto.EntitlementCreateDTO) (*dto.EntitlementDTO, error) {
	entitlement := model.Entitlement{
		Email:      req.Email,
		TestID:     req.TestID,
		RollNumber: req.RollNumber,
	}
	if err := s.entitlementRepo.Create(&entitlement); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.entitlementRepo.FindByEmailAndTest(req.Email, req.TestID)
			if findErr != nil {
				log.Error().Err(findErr).Str("email", req.Email).Str("test_id", req.TestID).Msg("Grant: failed to load existing entitlement")
				return nil, apperr.StorageFailure(findErr)
			}
			entitlement = *existing
		} else {
			log.Error().Err(err).Str("email", req.Email).Str("test_id", req.TestID).Msg("Grant: failed to create entitlement")
			return nil, apperr.StorageFailure(err)
		}
	}

	log.Info().Str("email", entitlement.Email).Str("test_id", entitlement.TestID).Msg("Entitlement granted")

	var resp dto.EntitlementDTO
	if err := copier.Copy(&resp, &entitlement); err != nil {
		log.Error().Err(err).Msg("Grant: failed to copy entitlement to DTO")
		return nil, apperr.StorageFailure(err)
	}
	return &resp, nil
}
