package cataloginfra

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/google/uuid"
)

// MemoryCatalogRepository keeps the catalog in process memory. It backs tests
// and local runs without Postgres.
type MemoryCatalogRepository struct {
	mu         sync.RWMutex
	products   map[kernel.ProductID]catalog.Product
	order      []kernel.ProductID
	variants   map[kernel.ProductID][]catalog.Variant
	assets     map[string]catalog.GarmentAsset
	mannequins map[catalog.BodyType]catalog.MannequinAsset
}

func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		products:   make(map[kernel.ProductID]catalog.Product),
		variants:   make(map[kernel.ProductID][]catalog.Variant),
		assets:     make(map[string]catalog.GarmentAsset),
		mannequins: make(map[catalog.BodyType]catalog.MannequinAsset),
	}
}

func (m *MemoryCatalogRepository) Create(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *MemoryCatalogRepository) Update(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrProductNotFound().WithDetail("product_id", p.ID)
	}
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryCatalogRepository) FindByID(_ context.Context, id kernel.ProductID) (*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound().WithDetail("product_id", id)
	}
	p.Variants = m.variantsLocked(id)
	return &p, nil
}

func (m *MemoryCatalogRepository) List(_ context.Context, filter catalog.ListFilter) ([]catalog.Product, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []catalog.Product
	for _, id := range m.order {
		p := m.products[id]
		if !p.IsActive {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.FitType != "" && p.FitType != filter.FitType {
			continue
		}
		p.Variants = m.variantsLocked(id)
		matched = append(matched, p)
	}

	total := len(matched)
	start := min(filter.Offset(), total)
	end := min(start+filter.PageSize, total)
	return append([]catalog.Product{}, matched[start:end]...), total, nil
}

func (m *MemoryCatalogRepository) ListVariants(_ context.Context, productID kernel.ProductID) ([]catalog.Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.variantsLocked(productID), nil
}

func (m *MemoryCatalogRepository) EnsureVariants(_ context.Context, productID kernel.ProductID, sizes []kernel.Size) ([]catalog.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	have := map[kernel.Size]bool{}
	for _, v := range m.variants[productID] {
		have[v.Size] = true
	}
	for _, size := range sizes {
		if have[size] {
			continue
		}
		m.variants[productID] = append(m.variants[productID], catalog.Variant{
			ID: uuid.NewString(), ProductID: productID, Size: size, IsActive: true,
		})
	}
	return m.variantsLocked(productID), nil
}

func (m *MemoryCatalogRepository) variantsLocked(productID kernel.ProductID) []catalog.Variant {
	out := append([]catalog.Variant{}, m.variants[productID]...)
	rank := map[kernel.Size]int{}
	for i, s := range kernel.AllSizes {
		rank[s] = i
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i].Size] < rank[out[j].Size] })
	return out
}

func assetKey(productID kernel.ProductID, size kernel.Size, t catalog.AssetType) string {
	return productID.String() + "|" + size.String() + "|" + string(t)
}

func (m *MemoryCatalogRepository) UpsertGarmentAsset(_ context.Context, a *catalog.GarmentAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assetKey(a.ProductID, a.Size, a.AssetType)
	if existing, ok := m.assets[key]; ok {
		a.ID = existing.ID
	} else {
		a.ID = uuid.NewString()
	}
	m.assets[key] = *a
	return nil
}

func (m *MemoryCatalogRepository) ListGarmentAssets(_ context.Context, productID kernel.ProductID, size kernel.Size) ([]catalog.GarmentAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []catalog.GarmentAsset{}
	for _, t := range []catalog.AssetType{catalog.AssetOverlayBack, catalog.AssetOverlayFront} {
		if a, ok := m.assets[assetKey(productID, size, t)]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryCatalogRepository) FindMannequin(_ context.Context, bodyType catalog.BodyType) (*catalog.MannequinAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.mannequins[bodyType]
	if !ok {
		return nil, catalog.ErrMannequinNotFound().WithDetail("body_type", bodyType)
	}
	return &a, nil
}

func (m *MemoryCatalogRepository) UpsertMannequin(_ context.Context, a *catalog.MannequinAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.mannequins[a.BodyType]; ok {
		a.ID = existing.ID
	} else if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.mannequins[a.BodyType] = *a
	return nil
}
