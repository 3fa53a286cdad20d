package product

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/talkincode/productgate/config"
	"github.com/talkincode/productgate/internal/domain"
	"github.com/talkincode/productgate/internal/users"
	"gorm.io/gorm"
)

// PgStore is the relational backend. It owns the soft foreign-key rule:
// every create/update resolves userId against the users-api first. The
// check is point-in-time only; a user deleted later leaves its products
// behind.
type PgStore struct {
	db    *gorm.DB
	users *users.Client
}

func NewPgStore(db *gorm.DB, usersClient *users.Client) *PgStore {
	return &PgStore{db: db, users: usersClient}
}

func (s *PgStore) Backend() string {
	return config.BackendPostgres
}

// checkOwner resolves the userId against the users-api. A 404 rejects
// the write as a validation failure; any other fault is upstream.
func (s *PgStore) checkOwner(ctx context.Context, userID string) error {
	_, err := s.users.Get(ctx, userID)
	switch {
	case errors.Is(err, users.ErrNotFound):
		return Errorf(KindValidation, "user does not exist")
	case err != nil:
		return WrapErr(KindUpstream, err, "users-api error")
	}
	return nil
}

func (s *PgStore) Create(ctx context.Context, in CreateInput) (*Product, error) {
	price, ok := coercePrice(in.Price)
	if strings.TrimSpace(in.Name) == "" || in.UserID == "" || !ok {
		return nil, Errorf(KindValidation, "name, price, userId required")
	}

	if err := s.checkOwner(ctx, in.UserID); err != nil {
		return nil, err
	}

	row := domain.Product{
		Name:   in.Name,
		Price:  price,
		UserID: in.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, WrapErr(KindStorage, err, "insert failed")
	}
	return rowToProduct(&row), nil
}

// List returns every product ordered by id; the userId filter is not
// applied on this backend.
func (s *PgStore) List(ctx context.Context, _ string) ([]Product, error) {
	var rows []domain.Product
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, WrapErr(KindStorage, err, "query failed")
	}

	out := make([]Product, 0, len(rows))
	for i := range rows {
		out = append(out, *rowToProduct(&rows[i]))
	}
	return out, nil
}

func (s *PgStore) Get(ctx context.Context, id string) (*Product, error) {
	row, err := s.findRow(ctx, id)
	if err != nil {
		return nil, err
	}
	return rowToProduct(row), nil
}

// Update requires all three fields on every call; partial update is not
// supported on this backend.
func (s *PgStore) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	price, ok := coercePrice(in.Price)
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.UserID == "" || !ok {
		return nil, Errorf(KindValidation, "name, price, userId required")
	}

	if err := s.checkOwner(ctx, in.UserID); err != nil {
		return nil, err
	}

	row, err := s.findRow(ctx, id)
	if err != nil {
		return nil, err
	}

	row.Name = *in.Name
	row.Price = price
	row.UserID = in.UserID
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, WrapErr(KindStorage, err, "update failed")
	}
	return rowToProduct(row), nil
}

// Delete removes by id alone; userId plays no role on this backend
func (s *PgStore) Delete(ctx context.Context, id, _ string) (*DeleteResult, error) {
	rowID, err := parseRowID(id)
	if err != nil {
		return nil, Errorf(KindNotFound, "product not found")
	}

	res := s.db.WithContext(ctx).Where("id = ?", rowID).Delete(&domain.Product{})
	if res.Error != nil {
		return nil, WrapErr(KindStorage, res.Error, "delete failed")
	}
	if res.RowsAffected == 0 {
		return nil, Errorf(KindNotFound, "product not found")
	}
	return &DeleteResult{ID: id}, nil
}

// GetWithOwner joins the product with its owner. Any users-api failure,
// a missing user included, is an upstream fault here.
func (s *PgStore) GetWithOwner(ctx context.Context, id string) (*ProductWithOwner, error) {
	row, err := s.findRow(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.Get(ctx, row.UserID)
	if err != nil {
		return nil, WrapErr(KindUpstream, err, "users-api error")
	}
	return &ProductWithOwner{Product: rowToProduct(row), User: owner}, nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return WrapErr(KindStorage, err, "database probe failed")
	}
	return nil
}

func (s *PgStore) findRow(ctx context.Context, id string) (*domain.Product, error) {
	rowID, err := parseRowID(id)
	if err != nil {
		return nil, Errorf(KindNotFound, "product not found")
	}

	var row domain.Product
	err = s.db.WithContext(ctx).Where("id = ?", rowID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, Errorf(KindNotFound, "product not found")
	case err != nil:
		return nil, WrapErr(KindStorage, err, "query failed")
	}
	return &row, nil
}

func parseRowID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

func rowToProduct(row *domain.Product) *Product {
	created := row.CreatedAt
	updated := row.UpdatedAt
	return &Product{
		ID:        strconv.FormatInt(row.ID, 10),
		Name:      row.Name,
		Price:     row.Price,
		UserID:    row.UserID,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}
