package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tasting-service/internal/menu"
	"github.com/iliyamo/tasting-service/internal/model"
)

// MenuRepo reads tasting menus from MySQL.  The schema is two tables:
//
//	menus(id VARCHAR PRIMARY KEY, name VARCHAR)
//	menu_courses(menu_id VARCHAR, position INT, name VARCHAR)
//
// with position starting at 1.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo constructs a MenuRepo with the provided DB handle.
func NewMenuRepo(db *sql.DB) *MenuRepo {
	return &MenuRepo{db: db}
}

// LoadAll returns every menu with its courses in order.  A menu without
// courses is kept; it composes to zero lines.
func (r *MenuRepo) LoadAll(ctx context.Context) (menu.Catalog, error) {
	const q = `SELECT m.id, m.name, c.name
		FROM menus m
		LEFT JOIN menu_courses c ON c.menu_id = m.id
		ORDER BY m.id, c.position`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	menus, err := collectMenus(rows)
	if err != nil {
		return nil, err
	}
	return menu.NewCatalog(menus), nil
}

// rowSource is the part of *sql.Rows the scanners use.
type rowSource interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// collectMenus groups (menu id, menu name, course name) rows into menus,
// keeping first-seen menu order and row order within a menu.  A NULL
// course marks a menu with no courses.
func collectMenus(rows rowSource) ([]model.Menu, error) {
	byID := map[string]*model.Menu{}
	var order []string
	for rows.Next() {
		var (
			id, name string
			course   sql.NullString
		)
		if err := rows.Scan(&id, &name, &course); err != nil {
			return nil, err
		}
		m, ok := byID[id]
		if !ok {
			m = &model.Menu{ID: id, Name: name}
			byID[id] = m
			order = append(order, id)
		}
		if course.Valid {
			m.Courses = append(m.Courses, course.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	menus := make([]model.Menu, 0, len(order))
	for _, id := range order {
		menus = append(menus, *byID[id])
	}
	return menus, nil
}

// Get fetches one menu by id.
func (r *MenuRepo) Get(ctx context.Context, id string) (model.Menu, error) {
	const qMenu = "SELECT id, name FROM menus WHERE id = ?"
	var m model.Menu
	if err := r.db.QueryRowContext(ctx, qMenu, id).Scan(&m.ID, &m.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Menu{}, ErrMenuNotFound
		}
		return model.Menu{}, err
	}
	const qCourses = "SELECT name FROM menu_courses WHERE menu_id = ? ORDER BY position"
	rows, err := r.db.QueryContext(ctx, qCourses, id)
	if err != nil {
		return model.Menu{}, err
	}
	defer rows.Close()
	if m.Courses, err = collectCourses(rows); err != nil {
		return model.Menu{}, err
	}
	return m, nil
}

func collectCourses(rows rowSource) ([]string, error) {
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// StaticMenus serves single-menu lookups from an in-memory catalog, for
// stations running without the menu database.
type StaticMenus struct {
	Catalog menu.Catalog
}

// Get returns the menu with the given id, or ErrMenuNotFound.
func (s StaticMenus) Get(_ context.Context, id string) (model.Menu, error) {
	m, ok := s.Catalog.Menu(id)
	if !ok {
		return model.Menu{}, ErrMenuNotFound
	}
	return m, nil
}
