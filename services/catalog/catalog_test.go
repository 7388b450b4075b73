package catalog

import (
	"context"
	"errors"
	"testing"

	catalogRepo "beautycita/database/repository/catalog"
	"beautycita/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

type fakeRepo struct {
	categories []models.Category
	services   map[string][]models.ServiceRef
	err        error
	calls      int
}

func (f *fakeRepo) ListCategories(context.Context) ([]models.Category, error) {
	f.calls++
	return f.categories, f.err
}

func (f *fakeRepo) ListServicesByCategory(_ context.Context, category string) ([]models.ServiceRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.services[category], nil
}

func (f *fakeRepo) GetService(_ context.Context, id string) (*models.ServiceRef, error) {
	for _, list := range f.services {
		for i := range list {
			if list[i].ID == id {
				return &list[i], nil
			}
		}
	}
	return nil, catalogRepo.ErrServiceNotFound
}

func TestCategoriesFallBackToDefaults(t *testing.T) {
	svc := NewDefaultCatalogService(&fakeRepo{err: errors.New("mongo down")}, nil, nil)
	got, err := svc.GetServiceCategories(context.Background())
	if err != nil {
		t.Fatalf("GetServiceCategories: %v", err)
	}
	if len(got) != 4 || got[0].ID != "hair" || got[3].ID != "skincare" {
		t.Fatalf("categories = %+v", got)
	}

	got[0].Name = "mutated"
	if DefaultCategories[0].Name != "Hair Services" {
		t.Fatalf("defaults were mutated through the returned slice")
	}

	empty := NewDefaultCatalogService(&fakeRepo{}, nil, nil)
	if got, _ := empty.GetServiceCategories(context.Background()); len(got) != 4 {
		t.Fatalf("empty store should serve defaults, got %d", len(got))
	}
}

func TestCategoriesAreCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &fakeRepo{categories: []models.Category{{ID: "barber", Name: "Barber"}}}
	svc := NewDefaultCatalogService(repo, client, nil)

	for i := 0; i < 3; i++ {
		got, err := svc.GetServiceCategories(context.Background())
		if err != nil || len(got) != 1 || got[0].ID != "barber" {
			t.Fatalf("call %d = %+v, %v", i, got, err)
		}
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls = %d, want 1", repo.calls)
	}
	if !mr.Exists(categoriesCacheKey) {
		t.Fatalf("categories not written to the cache")
	}
}

func TestServicesByCategory(t *testing.T) {
	repo := &fakeRepo{services: map[string][]models.ServiceRef{
		"hair": {{ID: "cut", Category: "hair", BasePrice: 50}},
	}}
	svc := NewDefaultCatalogService(repo, nil, nil)

	got, err := svc.GetServicesByCategory(context.Background(), "hair")
	if err != nil || len(got) != 1 || got[0].ID != "cut" {
		t.Fatalf("services = %+v, %v", got, err)
	}
	if _, err := svc.GetServicesByCategory(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty category")
	}
	if _, err := svc.GetService(context.Background(), "nope"); !errors.Is(err, catalogRepo.ErrServiceNotFound) {
		t.Fatalf("GetService err = %v", err)
	}

	repo.err = errors.New("boom")
	if _, err := svc.GetServicesByCategory(context.Background(), "hair"); err == nil {
		t.Fatalf("expected store error")
	}
}
