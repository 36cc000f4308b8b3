package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog/internal/common"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
)

type assignmentKey struct {
	variantID uuid.UUID
	title     string
}

// assignmentIndex is the desired assignment set of a product.
type assignmentIndex struct {
	byKey   map[assignmentKey]*models.ProductVariant
	byTitle map[string][]*models.ProductVariant
}

func newAssignmentIndex() *assignmentIndex {
	return &assignmentIndex{
		byKey:   make(map[assignmentKey]*models.ProductVariant),
		byTitle: make(map[string][]*models.ProductVariant),
	}
}

func (idx *assignmentIndex) has(variantID uuid.UUID, title string) bool {
	_, ok := idx.byKey[assignmentKey{variantID: variantID, title: title}]
	return ok
}

func (idx *assignmentIndex) add(pv *models.ProductVariant) {
	idx.byKey[assignmentKey{variantID: pv.VariantID, title: pv.VariantTitle}] = pv
	idx.byTitle[pv.VariantTitle] = append(idx.byTitle[pv.VariantTitle], pv)
}

// resolve maps the segments of a composite title to assignments of the index.
func (idx *assignmentIndex) resolve(row *models.VariantPriceInput) ([]uuid.UUID, error) {
	segments, err := models.SplitVariantTitle(row.Title)
	if err != nil {
		return nil, common.InvalidProductData(err.Error(), map[string]string{"title": row.Title})
	}

	ids := make([]uuid.UUID, 0, len(segments))
	for i, segment := range segments {
		if len(row.Options) > 0 {
			pv, ok := idx.byKey[assignmentKey{variantID: row.Options[i], title: segment}]
			if !ok {
				return nil, common.InvalidProductData(
					fmt.Sprintf("option %q is not selected under variant %s", segment, row.Options[i]),
					map[string]string{"title": row.Title})
			}
			ids = append(ids, pv.ID)
			continue
		}

		matches := idx.byTitle[segment]
		switch len(matches) {
		case 0:
			return nil, common.InvalidProductData(
				fmt.Sprintf("option %q is not selected for this product", segment),
				map[string]string{"title": row.Title})
		case 1:
			ids = append(ids, matches[0].ID)
		default:
			return nil, common.AmbiguousSlot("option %q of %q is selected under %d variants; pass options to disambiguate",
				segment, row.Title, len(matches))
		}
	}
	return ids, nil
}

// pricePlan is the set of writes that makes the price matrix match the submitted rows.
type pricePlan struct {
	updates []*models.ProductVariantPrice
	inserts []*models.ProductVariantPrice
	stale   []uuid.UUID
}

// reconciler runs the create and update algorithms against repositories bound to one transaction.
type reconciler struct {
	repos *repositories.Repositories
}

// syncAssignments makes the product's assignments match the selections. It returns the desired
// index and the ids of existing assignments that are no longer selected.
func (r *reconciler) syncAssignments(ctx context.Context, productID uuid.UUID, selections []models.VariantSelection, requireActive bool) (*assignmentIndex, []uuid.UUID, error) {
	existing, err := r.repos.ProductVariants.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	stale := make(map[uuid.UUID]struct{}, len(existing))
	for _, pv := range existing {
		stale[pv.ID] = struct{}{}
	}

	idx := newAssignmentIndex()
	checked := map[uuid.UUID]bool{}
	for _, sel := range selections {
		if !checked[sel.Option] {
			variant, err := r.repos.Variants.GetByID(ctx, sel.Option)
			if err != nil {
				return nil, nil, err
			}
			if requireActive && !variant.Active {
				return nil, nil, common.InvalidProductData(
					fmt.Sprintf("variant %q is not active", variant.Title),
					map[string]string{"option": sel.Option.String()})
			}
			checked[sel.Option] = true
		}

		for _, tag := range sel.Tags {
			if idx.has(sel.Option, tag) {
				continue
			}
			pv, err := r.repos.ProductVariants.Find(ctx, productID, sel.Option, tag)
			if err != nil {
				if !errors.Is(err, common.ErrNotFound) {
					return nil, nil, err
				}
				pv = &models.ProductVariant{ID: uuid.New(), VariantTitle: tag, VariantID: sel.Option, ProductID: productID}
				if err := r.repos.ProductVariants.Create(ctx, pv); err != nil {
					return nil, nil, err
				}
			}
			delete(stale, pv.ID)
			idx.add(pv)
		}
	}

	staleIDs := make([]uuid.UUID, 0, len(stale))
	for _, pv := range existing {
		if _, ok := stale[pv.ID]; ok {
			staleIDs = append(staleIDs, pv.ID)
		}
	}
	return idx, staleIDs, nil
}

// planPrices decides, for each submitted row, whether it updates an existing row or is inserted.
// Rows carrying an id are claimed first so that id-less rows cannot take them.
func planPrices(productID uuid.UUID, rows []models.VariantPriceInput, idx *assignmentIndex, existing []*models.ProductVariantPrice) (*pricePlan, error) {
	byID := make(map[uuid.UUID]*models.ProductVariantPrice, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	desired := make([]*models.ProductVariantPrice, len(rows))
	seen := make(map[models.SlotKey]string, len(rows))
	for i := range rows {
		row := &rows[i]
		slots, err := idx.resolve(row)
		if err != nil {
			return nil, err
		}
		p := &models.ProductVariantPrice{ProductID: productID, Price: row.PriceOrZero(), Stock: row.StockOrZero()}
		p.SetSlots(slots)

		key := p.SlotKey()
		if prev, dup := seen[key]; dup {
			return nil, common.InvalidProductData(
				fmt.Sprintf("price rows %q and %q resolve to the same variant combination", prev, row.Title),
				map[string]string{"title": row.Title})
		}
		seen[key] = row.Title
		desired[i] = p
	}

	claimed := make(map[uuid.UUID]bool, len(existing))
	for i, row := range rows {
		if row.ID == nil {
			continue
		}
		if _, ok := byID[*row.ID]; !ok {
			return nil, common.NotFound("price row %s not found for product %s", *row.ID, productID)
		}
		if claimed[*row.ID] {
			return nil, common.InvalidProductData("price row submitted twice", map[string]string{"id": row.ID.String()})
		}
		claimed[*row.ID] = true
		desired[i].ID = *row.ID
	}

	unclaimed := make(map[models.SlotKey]*models.ProductVariantPrice, len(existing))
	for _, p := range existing {
		if !claimed[p.ID] {
			if _, ok := unclaimed[p.SlotKey()]; !ok {
				unclaimed[p.SlotKey()] = p
			}
		}
	}
	for i, row := range rows {
		if row.ID != nil {
			continue
		}
		if match, ok := unclaimed[desired[i].SlotKey()]; ok {
			delete(unclaimed, desired[i].SlotKey())
			claimed[match.ID] = true
			desired[i].ID = match.ID
		}
	}

	plan := &pricePlan{}
	for _, p := range desired {
		if p.ID == uuid.Nil {
			plan.inserts = append(plan.inserts, p)
			continue
		}
		if current := byID[p.ID]; current.SlotKey() == p.SlotKey() && current.Price.Equal(p.Price) && current.Stock == p.Stock {
			continue
		}
		plan.updates = append(plan.updates, p)
	}
	for _, p := range existing {
		if !claimed[p.ID] {
			plan.stale = append(plan.stale, p.ID)
		}
	}
	return plan, nil
}

// syncPrices plans and applies the price matrix: stale rows go first so that their slot tuples
// are free for the updates and inserts that follow.
func (r *reconciler) syncPrices(ctx context.Context, productID uuid.UUID, rows []models.VariantPriceInput, idx *assignmentIndex) error {
	existing, err := r.repos.VariantPrices.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	plan, err := planPrices(productID, rows, idx, existing)
	if err != nil {
		return err
	}

	if _, err := r.repos.VariantPrices.DeleteByIDs(ctx, productID, plan.stale); err != nil {
		return err
	}
	for _, p := range plan.updates {
		if err := r.repos.VariantPrices.Update(ctx, p); err != nil {
			return err
		}
	}
	for _, p := range plan.inserts {
		if err := r.repos.VariantPrices.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *reconciler) addImages(ctx context.Context, productID uuid.UUID, refs []string) error {
	for _, ref := range refs {
		image := &models.ProductImage{ProductID: productID, FilePath: strings.TrimSpace(ref)}
		if err := r.repos.Images.Create(ctx, image); err != nil {
			return err
		}
	}
	return nil
}

// create materializes a new product with its assignments and price rows.
func (r *reconciler) create(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	taken, err := r.repos.Products.ExistsBySKU(ctx, payload.SKU, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.DuplicateSKU(payload.SKU)
	}

	product := &models.Product{
		ID:          uuid.New(),
		Title:       payload.Title,
		SKU:         payload.SKU,
		Description: payload.Description,
	}
	if err := r.repos.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	if err := r.addImages(ctx, product.ID, payload.Images); err != nil {
		return nil, err
	}

	idx, _, err := r.syncAssignments(ctx, product.ID, payload.Variants, true)
	if err != nil {
		return nil, err
	}
	if err := r.syncPrices(ctx, product.ID, payload.VariantPrices, idx); err != nil {
		return nil, err
	}
	return product, nil
}

// update diffs the payload against the persisted product and applies the difference.
func (r *reconciler) update(ctx context.Context, productID uuid.UUID, payload *models.ProductPayload) (*models.Product, error) {
	product, err := r.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	taken, err := r.repos.Products.ExistsBySKU(ctx, payload.SKU, &productID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.DuplicateSKU(payload.SKU)
	}

	product.Title = payload.Title
	product.SKU = payload.SKU
	product.Description = payload.Description
	if err := r.repos.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	if err := r.addImages(ctx, product.ID, payload.Images); err != nil {
		return nil, err
	}

	idx, staleAssignments, err := r.syncAssignments(ctx, product.ID, payload.Variants, false)
	if err != nil {
		return nil, err
	}
	if err := r.syncPrices(ctx, product.ID, payload.VariantPrices, idx); err != nil {
		return nil, err
	}
	if _, err := r.repos.ProductVariants.DeleteByIDs(ctx, product.ID, staleAssignments); err != nil {
		return nil, err
	}
	return product, nil
}
