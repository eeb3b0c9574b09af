package services

import (
	"testing"

	"curtain_shop_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_GetCurtainByID_Visibility(t *testing.T) {
	inactive := models.Curtain{ID: 9, Title: "Archived tulle", Price: 120000, IsActive: false}
	active := models.Curtain{ID: 10, Title: "Velvet blackout", Price: 250000, IsActive: true, Views: 3}

	curtains := map[int64]models.Curtain{inactive.ID: inactive, active.ID: active}
	newService := func() (*mockCatalogRepository, CatalogService) {
		repo := &mockCatalogRepository{
			getCurtainByIDFunc: func(curtainID int64) (*models.Curtain, error) {
				c, ok := curtains[curtainID]
				if !ok {
					return nil, ErrCurtainNotFound
				}
				return &c, nil
			},
		}
		return repo, NewCatalogService(repo, nil)
	}

	t.Run("public_hides_inactive", func(t *testing.T) {
		repo, svc := newService()
		_, err := svc.GetCurtainByID(inactive.ID, true)
		assert.ErrorIs(t, err, ErrCurtainNotFound)
		assert.Zero(t, repo.viewsIncremented, "a hidden curtain must not collect views")
	})

	t.Run("public_counts_view_on_active", func(t *testing.T) {
		repo, svc := newService()
		got, err := svc.GetCurtainByID(active.ID, true)
		require.NoError(t, err)
		assert.Equal(t, active.Views+1, got.Views)
		assert.Equal(t, 1, repo.viewsIncremented)
	})

	t.Run("staff_sees_inactive_without_views", func(t *testing.T) {
		repo, svc := newService()
		got, err := svc.GetCurtainByID(inactive.ID, false)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		assert.Zero(t, repo.viewsIncremented)
	})
}
