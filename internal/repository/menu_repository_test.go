package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
)

// fakeRows replays fixed rows through the rowSource surface.
type fakeRows struct {
	data [][]any
	pos  int
	err  error
	scan func(dest ...any) error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scan != nil {
		return r.scan(dest...)
	}
	row := r.data[r.pos-1]
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = row[i].(string)
		case *sql.NullString:
			if row[i] == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: row[i].(string), Valid: true}
			}
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func TestCollectMenusGroupsRows(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{"spring", "Spring", "Pea"},
		{"spring", "Spring", "Lamb"},
		{"empty", "Nothing yet", nil},
		{"spring", "Spring", "Rhubarb"},
		{"garden", "Garden", "Radish"},
	}}

	menus, err := collectMenus(rows)
	require.NoError(t, err)
	assert.Equal(t, []model.Menu{
		{ID: "spring", Name: "Spring", Courses: []string{"Pea", "Lamb", "Rhubarb"}},
		{ID: "empty", Name: "Nothing yet"},
		{ID: "garden", Name: "Garden", Courses: []string{"Radish"}},
	}, menus)
}

func TestCollectMenusErrors(t *testing.T) {
	_, err := collectMenus(&fakeRows{data: [][]any{{"a"}}, scan: func(...any) error { return errors.New("bad column") }})
	assert.EqualError(t, err, "bad column")

	_, err = collectMenus(&fakeRows{err: errors.New("connection reset")})
	assert.EqualError(t, err, "connection reset")
}

func TestCollectCourses(t *testing.T) {
	courses, err := collectCourses(&fakeRows{data: [][]any{{"Oyster"}, {"Bread"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Oyster", "Bread"}, courses)

	courses, err = collectCourses(&fakeRows{})
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestStaticMenusGet(t *testing.T) {
	src := StaticMenus{Catalog: menu.NewCatalog([]model.Menu{{ID: "spring", Courses: []string{"Pea"}}})}

	m, err := src.Get(context.Background(), "spring")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pea"}, m.Courses)

	_, err = src.Get(context.Background(), "winter")
	assert.ErrorIs(t, err, ErrMenuNotFound)
}
