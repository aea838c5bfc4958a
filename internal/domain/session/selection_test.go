package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"github.com/your-org/campus-delivery-backend/internal/pkg/logger"
)

type fakeDirectory struct {
	universities map[uint]catalog.University
	campuses     map[uint]catalog.Campus
}

func (f *fakeDirectory) GetUniversity(_ context.Context, id uint) (*catalog.University, error) {
	u, ok := f.universities[id]
	if !ok {
		return nil, apperror.Wrap(apperror.TypeNotFound, catalog.ErrUniversityNotFound)
	}
	return &u, nil
}

func (f *fakeDirectory) GetCampus(_ context.Context, id uint) (*catalog.Campus, error) {
	c, ok := f.campuses[id]
	if !ok {
		return nil, apperror.Wrap(apperror.TypeNotFound, catalog.ErrCampusNotFound)
	}
	return &c, nil
}

func newTestSelection(t *testing.T) (*Selection, Store) {
	t.Helper()

	store, err := NewMemPebbleStore(time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dir := &fakeDirectory{
		universities: map[uint]catalog.University{
			1: {ID: 1, Name: "LUMS"},
			2: {ID: 2, Name: "NUST"},
		},
		campuses: map[uint]catalog.Campus{
			10: {ID: 10, UniversityID: 1, Name: "DHA"},
			20: {ID: 20, UniversityID: 2, Name: "H-12"},
		},
	}
	return NewSelection(store, dir, logger.Discard()), store
}

func TestSelectCampusSelectsUniversity(t *testing.T) {
	sel, _ := newTestSelection(t)
	ctx := context.Background()

	state, err := sel.SelectCampus(ctx, "s1", 10)
	require.NoError(t, err)
	require.NotNil(t, state.University)
	assert.Equal(t, uint(1), state.University.ID)
	assert.Equal(t, "DHA", state.Campus.Name)

	current, err := sel.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, state, current)
}

func TestSelectCampusRejectsForeignCampus(t *testing.T) {
	sel, _ := newTestSelection(t)
	ctx := context.Background()

	_, err := sel.SelectUniversity(ctx, "s1", 1)
	require.NoError(t, err)

	_, err = sel.SelectCampus(ctx, "s1", 20)
	assert.True(t, apperror.IsType(err, apperror.TypeValidation))
}

func TestSelectUniversityDropsCampus(t *testing.T) {
	sel, _ := newTestSelection(t)
	ctx := context.Background()

	_, err := sel.SelectCampus(ctx, "s1", 10)
	require.NoError(t, err)

	state, err := sel.SelectUniversity(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Nil(t, state.Campus)

	campus, err := sel.SelectedCampus(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, campus)
}

func TestCurrentIgnoresMalformedSlots(t *testing.T) {
	sel, store := newTestSelection(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", KeySelectedUniversity, []byte("LUMS")))
	require.NoError(t, store.Set(ctx, "s1", KeySelectedCampus, []byte(`{"id":`)))

	state, err := sel.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, state.University)
	assert.Nil(t, state.Campus)
}

func TestSelectUnknownCampus(t *testing.T) {
	sel, _ := newTestSelection(t)

	_, err := sel.SelectCampus(context.Background(), "s1", 99)
	assert.True(t, apperror.IsType(err, apperror.TypeNotFound))
}
