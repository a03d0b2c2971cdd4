package region

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"plz-territory-go/internal/storage"
	"plz-territory-go/pkg/model"
)

// RegionService is the only reader and writer of the region to representative mapping.
// Every exported operation runs in a single transaction.
type RegionService struct {
	db       *sqlx.DB
	logger   *zap.Logger
	observer Observer
	newColor ColorFunc
}

// NewRegionService creates a new region service; observer may be nil
func NewRegionService(db *sqlx.DB, logger *zap.Logger, observer Observer) *RegionService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &RegionService{
		db:       db,
		logger:   logger,
		observer: observer,
		newColor: RandomColor,
	}
}

// SetColorFunc replaces the color generator used for new representatives
func (s *RegionService) SetColorFunc(f ColorFunc) {
	s.newColor = f
}

// Seed inserts every code that is not yet present, unassigned. Present codes are left untouched.
// Returns the number of inserted regions. Safe to call repeatedly.
func (s *RegionService) Seed(ctx context.Context, codes []string) (int, error) {
	codes = normalizeCodes(codes)
	inserted := 0

	err := s.withTx(ctx, "seed", func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx,
			tx.Rebind("INSERT INTO plz_regions (code, representative_id) VALUES (?, NULL) ON CONFLICT (code) DO NOTHING"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, code := range codes {
			res, err := stmt.ExecContext(ctx, code)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Regions seeded", zap.Int("inserted", inserted), zap.Int("offered", len(codes)))
	return inserted, nil
}

// Representatives returns all representatives in German alphabetical order
func (s *RegionService) Representatives(ctx context.Context) ([]model.Representative, error) {
	reps := []model.Representative{}
	err := s.withTx(ctx, "representatives", func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &reps, "SELECT id, name, color FROM representatives")
	})
	if err != nil {
		return nil, err
	}

	c := collate.New(language.German)
	sort.SliceStable(reps, func(i, j int) bool {
		return c.CompareString(reps[i].Name, reps[j].Name) < 0
	})
	return reps, nil
}

// ListRepresentatives returns all representative names in German alphabetical order
func (s *RegionService) ListRepresentatives(ctx context.Context) ([]string, error) {
	reps, err := s.Representatives(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(reps))
	for i, rep := range reps {
		names[i] = rep.Name
	}
	return names, nil
}

// Assign gives the listed regions to the named representative, creating it with a
// fresh color if the name is unknown. Prior owners of those regions lose them.
// Codes that are not present in the store are ignored and reported in the result.
func (s *RegionService) Assign(ctx context.Context, name string, codes []string) (*model.AssignResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("representative name is required", "")
	}
	codes = normalizeCodes(codes)
	if len(codes) == 0 {
		return nil, validationError("at least one region is required", name)
	}

	result := &model.AssignResult{}
	err := s.withTx(ctx, "assign", func(tx *sqlx.Tx) error {
		rep, created, err := s.ensureRepresentative(ctx, tx, name)
		if err != nil {
			return err
		}
		result.Representative = rep
		result.Created = created

		present, err := presentCodes(ctx, tx, codes)
		if err != nil {
			return err
		}
		if err := setOwner(ctx, tx, ownerID(rep.ID), present); err != nil {
			return err
		}

		result.Assigned = present
		result.Ignored = difference(codes, present)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Regions assigned",
		zap.String("representative", name),
		zap.Bool("created", result.Created),
		zap.Int("assigned", len(result.Assigned)),
		zap.Strings("ignored", result.Ignored),
	)
	return result, nil
}

// SetRegions makes codes the exact region set of an existing representative: regions it
// holds that are not listed become unassigned, listed ones are assigned to it.
func (s *RegionService) SetRegions(ctx context.Context, name string, codes []string) (*model.AssignResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("representative name is required", "")
	}
	codes = normalizeCodes(codes)
	if len(codes) == 0 {
		return nil, validationError("at least one region is required", name)
	}

	result := &model.AssignResult{}
	err := s.withTx(ctx, "set_regions", func(tx *sqlx.Tx) error {
		rep, err := representativeByName(ctx, tx, name)
		if err != nil {
			return err
		}
		result.Representative = rep

		var held []string
		if err := tx.SelectContext(ctx, &held,
			tx.Rebind("SELECT code FROM plz_regions WHERE representative_id = ? ORDER BY code"), rep.ID); err != nil {
			return err
		}

		present, err := presentCodes(ctx, tx, codes)
		if err != nil {
			return err
		}

		removed := difference(held, present)
		if err := setOwner(ctx, tx, sql.NullInt64{}, removed); err != nil {
			return err
		}
		if err := setOwner(ctx, tx, ownerID(rep.ID), present); err != nil {
			return err
		}

		result.Assigned = present
		result.Ignored = difference(codes, present)
		result.Unassigned = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Region set replaced",
		zap.String("representative", name),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("unassigned", len(result.Unassigned)),
	)
	return result, nil
}

// Unassign clears the owner of the listed regions and returns how many changed
func (s *RegionService) Unassign(ctx context.Context, codes []string) (int, error) {
	codes = normalizeCodes(codes)
	if len(codes) == 0 {
		return 0, validationError("at least one region is required", "")
	}

	changed := 0
	err := s.withTx(ctx, "unassign", func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(
			"UPDATE plz_regions SET representative_id = NULL WHERE representative_id IS NOT NULL AND code IN (?)", codes)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		changed = int(n)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Regions unassigned", zap.Int("changed", changed))
	return changed, nil
}

// Rename changes a representative's name. Region references follow the id and stay intact.
func (s *RegionService) Rename(ctx context.Context, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" {
		return validationError("current representative name is required", "")
	}
	if newName == "" {
		return validationError("new representative name must not be empty", oldName)
	}

	err := s.withTx(ctx, "rename", func(tx *sqlx.Tx) error {
		rep, err := representativeByName(ctx, tx, oldName)
		if err != nil {
			return err
		}
		return renameTx(ctx, tx, rep, newName)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Representative renamed", zap.String("old_name", oldName), zap.String("new_name", newName))
	return nil
}

// SetColor changes a representative's display color
func (s *RegionService) SetColor(ctx context.Context, name, color string) (*model.Representative, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("representative name is required", "")
	}
	color, err := NormalizeColor(color)
	if err != nil {
		return nil, err
	}

	var rep model.Representative
	err = s.withTx(ctx, "set_color", func(tx *sqlx.Tx) error {
		var err error
		rep, err = representativeByName(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE representatives SET color = ? WHERE id = ?"), color, rep.ID)
		rep.Color = color
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Representative recolored", zap.String("name", name), zap.String("color", color))
	return &rep, nil
}

// Update renames and/or recolors a representative in one transaction; nil fields are
// left alone. Nothing is written unless every change is valid.
func (s *RegionService) Update(ctx context.Context, name string, newName, color *string) (*model.Representative, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("representative name is required", "")
	}
	if newName == nil && color == nil {
		return nil, validationError("nothing to update: name or color required", name)
	}

	var rename, recolor string
	if newName != nil {
		rename = strings.TrimSpace(*newName)
		if rename == "" {
			return nil, validationError("new representative name must not be empty", name)
		}
	}
	if color != nil {
		c, err := NormalizeColor(*color)
		if err != nil {
			return nil, err
		}
		recolor = c
	}

	var rep model.Representative
	err := s.withTx(ctx, "update", func(tx *sqlx.Tx) error {
		var err error
		rep, err = representativeByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if rename != "" {
			if err := renameTx(ctx, tx, rep, rename); err != nil {
				return err
			}
			rep.Name = rename
		}
		if recolor != "" {
			if _, err := tx.ExecContext(ctx,
				tx.Rebind("UPDATE representatives SET color = ? WHERE id = ?"), recolor, rep.ID); err != nil {
				return err
			}
			rep.Color = recolor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Representative updated",
		zap.String("name", name),
		zap.String("new_name", rep.Name),
		zap.String("color", rep.Color),
	)
	return &rep, nil
}

// Delete removes a representative after unassigning all of its regions.
// Unknown names are a no-op; the return value reports whether a row was removed.
func (s *RegionService) Delete(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	deleted := false

	err := s.withTx(ctx, "delete", func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, tx.Rebind("SELECT id FROM representatives WHERE name = ?"), name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE plz_regions SET representative_id = NULL WHERE representative_id = ?"), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM representatives WHERE id = ?"), id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("Representative deleted", zap.String("name", name))
	}
	return deleted, nil
}

// RegionsFor returns the sorted codes held by the named representative
func (s *RegionService) RegionsFor(ctx context.Context, name string) ([]string, error) {
	codes := []string{}
	err := s.withTx(ctx, "regions_for", func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &codes, tx.Rebind(`
			SELECT r.code FROM plz_regions r
			JOIN representatives v ON r.representative_id = v.id
			WHERE v.name = ?
			ORDER BY r.code`), strings.TrimSpace(name))
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// UnassignedRegions returns the sorted codes without a representative
func (s *RegionService) UnassignedRegions(ctx context.Context) ([]string, error) {
	codes := []string{}
	err := s.withTx(ctx, "unassigned_regions", func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &codes,
			"SELECT code FROM plz_regions WHERE representative_id IS NULL ORDER BY code")
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// AllRegionAssignments returns a consistent snapshot of every region and its owner
func (s *RegionService) AllRegionAssignments(ctx context.Context) (model.Assignments, error) {
	type row struct {
		model.Region
		Name  sql.NullString `db:"name"`
		Color sql.NullString `db:"color"`
	}

	var rows []row
	err := s.withTx(ctx, "all_region_assignments", func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, `
			SELECT r.code, r.representative_id, v.name, v.color
			FROM plz_regions r
			LEFT JOIN representatives v ON r.representative_id = v.id`)
	})
	if err != nil {
		return nil, err
	}

	snapshot := make(model.Assignments, len(rows))
	for _, r := range rows {
		if r.Assigned() && r.Name.Valid {
			snapshot[r.Code] = &model.Owner{Name: r.Name.String, Color: r.Color.String}
		} else {
			snapshot[r.Code] = nil
		}
	}

	unassigned := snapshot.Unassigned()
	s.observer.ObserveSnapshot(len(snapshot)-unassigned, unassigned)
	return snapshot, nil
}

// withTx runs fn in a transaction, rolling back on error. Errors that are not
// already store errors are reported as StorageUnavailable.
func (s *RegionService) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) (err error) {
	defer func() { s.observer.ObserveOperation(op, err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction", zap.String("op", op), zap.Error(err))
		return storageError(op, err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("Rollback failed", zap.String("op", op), zap.Error(rbErr))
		}
		if KindOf(err) == 0 {
			s.logger.Error("Store operation failed", zap.String("op", op), zap.Error(err))
		}
		return storageError(op, err)
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", zap.String("op", op), zap.Error(err))
		return storageError(op, err)
	}
	return nil
}

func (s *RegionService) ensureRepresentative(ctx context.Context, tx *sqlx.Tx, name string) (model.Representative, bool, error) {
	rep, err := representativeByName(ctx, tx, name)
	if err == nil {
		return rep, false, nil
	}
	if KindOf(err) != KindNotFound {
		return rep, false, err
	}

	rep = model.Representative{Name: name, Color: s.newColor()}
	err = tx.QueryRowxContext(ctx,
		tx.Rebind("INSERT INTO representatives (name, color) VALUES (?, ?) RETURNING id"),
		rep.Name, rep.Color).Scan(&rep.ID)
	if storage.IsUniqueViolation(err) {
		return rep, false, conflictError("a representative with this name already exists", name, err)
	}
	if err != nil {
		return rep, false, err
	}

	s.logger.Info("Representative created", zap.String("name", name), zap.String("color", rep.Color))
	return rep, true, nil
}

func representativeByName(ctx context.Context, tx *sqlx.Tx, name string) (model.Representative, error) {
	var rep model.Representative
	err := tx.GetContext(ctx, &rep, tx.Rebind("SELECT id, name, color FROM representatives WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return rep, notFoundError("representative not found", name)
	}
	return rep, err
}

// renameTx gives rep the name newName unless another representative holds it
func renameTx(ctx context.Context, tx *sqlx.Tx, rep model.Representative, newName string) error {
	if rep.Name == newName {
		return nil
	}

	var otherID int64
	err := tx.GetContext(ctx, &otherID, tx.Rebind("SELECT id FROM representatives WHERE name = ?"), newName)
	switch {
	case err == nil && otherID != rep.ID:
		return conflictError("a representative with this name already exists", newName, nil)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE representatives SET name = ? WHERE id = ?"), newName, rep.ID)
	if storage.IsUniqueViolation(err) {
		return conflictError("a representative with this name already exists", newName, err)
	}
	return err
}

// presentCodes returns the subset of codes that exist in the store, sorted
func presentCodes(ctx context.Context, tx *sqlx.Tx, codes []string) ([]string, error) {
	present := []string{}
	if len(codes) == 0 {
		return present, nil
	}
	query, args, err := sqlx.In("SELECT code FROM plz_regions WHERE code IN (?) ORDER BY code", codes)
	if err != nil {
		return nil, err
	}
	if err := tx.SelectContext(ctx, &present, tx.Rebind(query), args...); err != nil {
		return nil, err
	}
	return present, nil
}

func ownerID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

// setOwner points the listed regions at repID, or clears them when repID is NULL
func setOwner(ctx context.Context, tx *sqlx.Tx, repID sql.NullInt64, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	query, args, err := sqlx.In("UPDATE plz_regions SET representative_id = ? WHERE code IN (?)", repID, codes)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

// normalizeCodes trims, drops blanks, dedupes and sorts
func normalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// difference returns the elements of a not in b; both sorted
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, v := range b {
		in[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := in[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
