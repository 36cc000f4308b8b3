package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"catalog/internal/common"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memState mirrors the catalog tables. Slices keep insertion order like the seq column.
type memState struct {
	variants    []*models.Variant
	products    []*models.Product
	images      []*models.ProductImage
	assignments []*models.ProductVariant
	prices      []*models.ProductVariantPrice
}

func (s *memState) clone() *memState {
	c := &memState{}
	for _, v := range s.variants {
		cp := *v
		c.variants = append(c.variants, &cp)
	}
	for _, p := range s.products {
		cp := *p
		c.products = append(c.products, &cp)
	}
	for _, i := range s.images {
		cp := *i
		c.images = append(c.images, &cp)
	}
	for _, a := range s.assignments {
		cp := *a
		c.assignments = append(c.assignments, &cp)
	}
	for _, p := range s.prices {
		c.prices = append(c.prices, copyPrice(p))
	}
	return c
}

func copyPrice(p *models.ProductVariantPrice) *models.ProductVariantPrice {
	cp := *p
	var ids []uuid.UUID
	for _, slot := range p.Slots() {
		if slot == nil {
			break
		}
		ids = append(ids, *slot)
	}
	cp.SetSlots(ids)
	return &cp
}

// memStore is an in-memory unit of work: a transaction works on the live state and a failed
// transaction restores the snapshot taken at begin. Deferred constraints are checked at commit.
type memStore struct {
	state     *memState
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{}}
}

func (m *memStore) repos() *repositories.Repositories {
	return &repositories.Repositories{
		Variants:        &memVariantRepo{m},
		Products:        &memProductRepo{m},
		Images:          &memImageRepo{m},
		ProductVariants: &memAssignmentRepo{m},
		VariantPrices:   &memPriceRepo{m},
	}
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(repos *repositories.Repositories) error) error {
	snapshot := m.state.clone()
	err := fn(m.repos())
	if err == nil {
		err = m.checkDeferred()
	}
	if err != nil {
		m.state = snapshot
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) checkDeferred() error {
	seen := map[string]bool{}
	for _, p := range m.state.prices {
		key := fmt.Sprintf("%s:%v", p.ProductID, p.SlotKey())
		if seen[key] {
			return common.InvalidProductData("duplicate variant combination", nil)
		}
		seen[key] = true
	}
	return nil
}

func (m *memStore) addVariant(title string, active bool) *models.Variant {
	v := &models.Variant{ID: uuid.New(), Title: title, Active: active, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.state.variants = append(m.state.variants, v)
	return v
}

func (m *memStore) assignmentsOf(productID uuid.UUID) []*models.ProductVariant {
	var out []*models.ProductVariant
	for _, a := range m.state.assignments {
		if a.ProductID == productID {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) pricesOf(productID uuid.UUID) []*models.ProductVariantPrice {
	var out []*models.ProductVariantPrice
	for _, p := range m.state.prices {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) assignmentExists(id uuid.UUID) bool {
	for _, a := range m.state.assignments {
		if a.ID == id {
			return true
		}
	}
	return false
}

type memVariantRepo struct{ m *memStore }

func (r *memVariantRepo) Create(ctx context.Context, variant *models.Variant) error {
	for _, v := range r.m.state.variants {
		if v.Title == variant.Title {
			return common.InvalidProductData("variant title already exists", map[string]string{"title": variant.Title})
		}
	}
	variant.CreatedAt, variant.UpdatedAt = time.Now(), time.Now()
	cp := *variant
	r.m.state.variants = append(r.m.state.variants, &cp)
	return nil
}

func (r *memVariantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	for _, v := range r.m.state.variants {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, common.NotFound("variant %s not found", id)
}

func (r *memVariantRepo) ListActive(ctx context.Context) ([]*models.Variant, error) {
	all, _ := r.List(ctx)
	var out []*models.Variant
	for _, v := range all {
		if v.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memVariantRepo) List(ctx context.Context) ([]*models.Variant, error) {
	var out []*models.Variant
	for _, v := range r.m.state.variants {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type memProductRepo struct{ m *memStore }

func (r *memProductRepo) Create(ctx context.Context, product *models.Product) error {
	for _, p := range r.m.state.products {
		if p.SKU == product.SKU {
			return common.DuplicateSKU(product.SKU)
		}
	}
	product.CreatedAt, product.UpdatedAt = time.Now(), time.Now()
	cp := *product
	r.m.state.products = append(r.m.state.products, &cp)
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for _, p := range r.m.state.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.NotFound("product %s not found", id)
}

func (r *memProductRepo) Update(ctx context.Context, product *models.Product) error {
	for _, p := range r.m.state.products {
		if p.ID != product.ID && p.SKU == product.SKU {
			return common.DuplicateSKU(product.SKU)
		}
	}
	for _, p := range r.m.state.products {
		if p.ID == product.ID {
			p.Title, p.SKU, p.Description, p.UpdatedAt = product.Title, product.SKU, product.Description, time.Now()
			product.UpdatedAt = p.UpdatedAt
			return nil
		}
	}
	return common.NotFound("product %s not found", product.ID)
}

func (r *memProductRepo) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range r.m.state.products {
		if p.SKU == sku && (excludeID == nil || p.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProductRepo) matching(filter *models.ProductListFilter) []*models.Product {
	var ids map[uuid.UUID]bool
	if filter.ProductIDs != nil {
		ids = map[uuid.UUID]bool{}
		for _, id := range filter.ProductIDs {
			ids[id] = true
		}
	}
	var out []*models.Product
	for i := len(r.m.state.products) - 1; i >= 0; i-- {
		p := r.m.state.products[i]
		if filter.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if ids != nil && !ids[p.ID] {
			continue
		}
		if filter.Date != nil {
			y1, m1, d1 := p.CreatedAt.UTC().Date()
			y2, m2, d2 := filter.Date.UTC().Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func (r *memProductRepo) List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error) {
	all := r.matching(filter)
	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (r *memProductRepo) Count(ctx context.Context, filter *models.ProductListFilter) (int, error) {
	return len(r.matching(filter)), nil
}

type memImageRepo struct{ m *memStore }

func (r *memImageRepo) Create(ctx context.Context, image *models.ProductImage) error {
	if _, err := (&memProductRepo{r.m}).GetByID(ctx, image.ProductID); err != nil {
		return err
	}
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	image.CreatedAt = time.Now()
	cp := *image
	r.m.state.images = append(r.m.state.images, &cp)
	return nil
}

func (r *memImageRepo) GetByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	var out []*models.ProductImage
	for _, i := range r.m.state.images {
		if i.ProductID == productID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memAssignmentRepo struct{ m *memStore }

func (r *memAssignmentRepo) Create(ctx context.Context, pv *models.ProductVariant) error {
	for _, a := range r.m.state.assignments {
		if a.ProductID == pv.ProductID && a.VariantID == pv.VariantID && a.VariantTitle == pv.VariantTitle {
			return common.InvalidProductData("option already assigned to product", nil)
		}
	}
	if pv.ID == uuid.Nil {
		pv.ID = uuid.New()
	}
	pv.CreatedAt = time.Now()
	cp := *pv
	r.m.state.assignments = append(r.m.state.assignments, &cp)
	return nil
}

func (r *memAssignmentRepo) Find(ctx context.Context, productID, variantID uuid.UUID, title string) (*models.ProductVariant, error) {
	for _, a := range r.m.state.assignments {
		if a.ProductID == productID && a.VariantID == variantID && a.VariantTitle == title {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.NotFound("option %q not assigned to product %s", title, productID)
}

func (r *memAssignmentRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariant, error) {
	var out []*models.ProductVariant
	for _, a := range r.m.assignmentsOf(productID) {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteByIDs cascades to price rows referencing the deleted assignments, like the foreign keys.
func (r *memAssignmentRepo) DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error) {
	drop := map[uuid.UUID]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	var n int64
	var kept []*models.ProductVariant
	for _, a := range r.m.state.assignments {
		if a.ProductID == productID && drop[a.ID] {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.m.state.assignments = kept

	var prices []*models.ProductVariantPrice
	for _, p := range r.m.state.prices {
		cascaded := false
		for _, slot := range p.Slots() {
			if slot != nil && drop[*slot] {
				cascaded = true
			}
		}
		if !cascaded {
			prices = append(prices, p)
		}
	}
	r.m.state.prices = prices
	return n, nil
}

func (r *memAssignmentRepo) DistinctTitles(ctx context.Context) ([]string, error) {
	set := map[string]bool{}
	for _, a := range r.m.state.assignments {
		set[a.VariantTitle] = true
	}
	var out []string
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

type memPriceRepo struct{ m *memStore }

func (r *memPriceRepo) checkSlots(p *models.ProductVariantPrice) error {
	for _, slot := range p.Slots() {
		if slot != nil && !r.m.assignmentExists(*slot) {
			return fmt.Errorf("foreign key violation: assignment %s", *slot)
		}
	}
	return nil
}

func (r *memPriceRepo) Create(ctx context.Context, price *models.ProductVariantPrice) error {
	if err := r.checkSlots(price); err != nil {
		return err
	}
	if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	price.CreatedAt, price.UpdatedAt = time.Now(), time.Now()
	r.m.state.prices = append(r.m.state.prices, copyPrice(price))
	return nil
}

func (r *memPriceRepo) Update(ctx context.Context, price *models.ProductVariantPrice) error {
	if err := r.checkSlots(price); err != nil {
		return err
	}
	for i, p := range r.m.state.prices {
		if p.ID == price.ID && p.ProductID == price.ProductID {
			updated := copyPrice(price)
			updated.CreatedAt, updated.UpdatedAt = p.CreatedAt, time.Now()
			r.m.state.prices[i] = updated
			return nil
		}
	}
	return common.NotFound("price row %s not found for product %s", price.ID, price.ProductID)
}

func (r *memPriceRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariantPrice, error) {
	var out []*models.ProductVariantPrice
	for _, p := range r.m.pricesOf(productID) {
		out = append(out, copyPrice(p))
	}
	return out, nil
}

func (r *memPriceRepo) DeleteByIDs(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) (int64, error) {
	drop := map[uuid.UUID]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	var n int64
	var kept []*models.ProductVariantPrice
	for _, p := range r.m.state.prices {
		if p.ProductID == productID && drop[p.ID] {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.m.state.prices = kept
	return n, nil
}

func (r *memPriceRepo) distinctProducts(match func(p *models.ProductVariantPrice) bool) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, p := range r.m.state.prices {
		if match(p) && !seen[p.ProductID] {
			seen[p.ProductID] = true
			ids = append(ids, p.ProductID)
		}
	}
	return ids
}

func (r *memPriceRepo) FindProductIDsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]uuid.UUID, error) {
	return r.distinctProducts(func(p *models.ProductVariantPrice) bool {
		return p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max)
	}), nil
}

func (r *memPriceRepo) FindProductIDsByOptionText(ctx context.Context, text string) ([]uuid.UUID, error) {
	titled := map[uuid.UUID]bool{}
	for _, a := range r.m.state.assignments {
		if a.VariantTitle == text {
			titled[a.ID] = true
		}
	}
	return r.distinctProducts(func(p *models.ProductVariantPrice) bool {
		for _, slot := range p.Slots() {
			if slot != nil && titled[*slot] {
				return true
			}
		}
		return false
	}), nil
}

func (r *memPriceRepo) titleOf(slot *uuid.UUID) string {
	if slot == nil {
		return ""
	}
	for _, a := range r.m.state.assignments {
		if a.ID == *slot {
			return a.VariantTitle
		}
	}
	return ""
}

func (r *memPriceRepo) ListSummaries(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.PriceRowSummary, error) {
	out := map[uuid.UUID][]models.PriceRowSummary{}
	for _, id := range productIDs {
		for _, p := range r.m.pricesOf(id) {
			out[id] = append(out[id], models.PriceRowSummary{
				VariantOne:   r.titleOf(p.ProductVariantOne),
				VariantTwo:   r.titleOf(p.ProductVariantTwo),
				VariantThree: r.titleOf(p.ProductVariantThree),
				Price:        p.Price,
				Stock:        p.Stock,
			})
		}
	}
	return out, nil
}

func (r *memPriceRepo) FindLowStock(ctx context.Context, threshold int) ([]*models.StockLevel, error) {
	var out []*models.StockLevel
	for _, p := range r.m.state.prices {
		if p.Stock > threshold {
			continue
		}
		product, _ := (&memProductRepo{r.m}).GetByID(ctx, p.ProductID)
		out = append(out, &models.StockLevel{
			PriceRowID:   p.ID,
			ProductID:    p.ProductID,
			ProductTitle: product.Title,
			VariantTitle: models.JoinVariantTitle(r.titleOf(p.ProductVariantOne), r.titleOf(p.ProductVariantTwo), r.titleOf(p.ProductVariantThree)),
			Stock:        p.Stock,
		})
	}
	return out, nil
}
