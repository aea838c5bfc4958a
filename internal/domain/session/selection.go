// internal/domain/session/selection.go
package session

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// UniversitySelection is the university a session is browsing
type UniversitySelection struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CampusSelection is the campus a session orders from
type CampusSelection struct {
	ID           uint   `json:"id"`
	UniversityID uint   `json:"universityId"`
	Name         string `json:"name"`
}

// State is the current selection of a session
type State struct {
	University *UniversitySelection `json:"university"`
	Campus     *CampusSelection     `json:"campus"`
}

// Directory resolves catalog entries for selection
type Directory interface {
	GetUniversity(ctx context.Context, id uint) (*catalog.University, error)
	GetCampus(ctx context.Context, id uint) (*catalog.Campus, error)
}

// Selection manages a session's university and campus choice
type Selection struct {
	store     Store
	directory Directory
	logger    logrus.FieldLogger
}

// NewSelection creates a new selection service
func NewSelection(store Store, directory Directory, logger logrus.FieldLogger) *Selection {
	return &Selection{
		store:     store,
		directory: directory,
		logger:    logger,
	}
}

// Current returns the session's selection; malformed slots read as unset
func (s *Selection) Current(ctx context.Context, sessionID string) (*State, error) {
	state := &State{}

	var uni UniversitySelection
	found, malformed, err := GetJSON(ctx, s.store, sessionID, KeySelectedUniversity, &uni)
	if err != nil {
		return nil, err
	}
	if malformed {
		s.logger.WithField("session_id", sessionID).Warn("Ignoring malformed selectedUniversity slot")
	}
	if found {
		state.University = &uni
	}

	var campus CampusSelection
	found, malformed, err = GetJSON(ctx, s.store, sessionID, KeySelectedCampus, &campus)
	if err != nil {
		return nil, err
	}
	if malformed {
		s.logger.WithField("session_id", sessionID).Warn("Ignoring malformed selectedCampus slot")
	}
	if found {
		state.Campus = &campus
	}

	return state, nil
}

// SelectedCampus returns the bound campus or nil
func (s *Selection) SelectedCampus(ctx context.Context, sessionID string) (*CampusSelection, error) {
	state, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Campus, nil
}

// SelectUniversity stores the university and drops a campus from another university
func (s *Selection) SelectUniversity(ctx context.Context, sessionID string, universityID uint) (*State, error) {
	university, err := s.directory.GetUniversity(ctx, universityID)
	if err != nil {
		return nil, err
	}

	state, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	uni := UniversitySelection{ID: university.ID, Name: university.Name}
	if err := SetJSON(ctx, s.store, sessionID, KeySelectedUniversity, uni); err != nil {
		return nil, err
	}
	state.University = &uni

	if state.Campus != nil && state.Campus.UniversityID != university.ID {
		if err := s.store.Delete(ctx, sessionID, KeySelectedCampus); err != nil {
			return nil, err
		}
		state.Campus = nil
	}

	return state, nil
}

// SelectCampus stores the campus. The campus must belong to the selected
// university; with no university selected, the campus's own is selected too.
func (s *Selection) SelectCampus(ctx context.Context, sessionID string, campusID uint) (*State, error) {
	campus, err := s.directory.GetCampus(ctx, campusID)
	if err != nil {
		return nil, err
	}

	state, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if state.University == nil {
		if state, err = s.SelectUniversity(ctx, sessionID, campus.UniversityID); err != nil {
			return nil, err
		}
	} else if state.University.ID != campus.UniversityID {
		return nil, apperror.Validation("campus does not belong to the selected university")
	}

	sel := CampusSelection{ID: campus.ID, UniversityID: campus.UniversityID, Name: campus.Name}
	if err := SetJSON(ctx, s.store, sessionID, KeySelectedCampus, sel); err != nil {
		return nil, err
	}
	state.Campus = &sel

	return state, nil
}

// Clear forgets both selections
func (s *Selection) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID, KeySelectedCampus); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID, KeySelectedUniversity)
}
