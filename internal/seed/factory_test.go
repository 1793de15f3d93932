package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tijuanashop/internal/domain/entity"
)

func TestBuildProduct_ProducesValidListings(t *testing.T) {
	f := NewFactory(nil, nil, Options{Seed: 42})
	seller := f.BuildUser()

	for i := 0; i < 50; i++ {
		p := f.BuildProduct(seller)
		require.NoError(t, p.Validate())
		assert.True(t, entity.IsValidCategory(p.Category), p.Category)
		assert.NotEmpty(t, p.Images)
		assert.True(t, strings.HasSuffix(p.Location, ", Tijuana"))

		bounds := priceRanges[p.Category]
		assert.GreaterOrEqual(t, p.Price, bounds[0])
		assert.LessOrEqual(t, p.Price, bounds[1])
	}
}

func TestBuildUser_RegistrationDefaults(t *testing.T) {
	f := NewFactory(nil, nil, Options{Seed: 7})
	u := f.BuildUser()

	assert.True(t, strings.HasPrefix(u.ID, "seed-"))
	assert.Equal(t, entity.DefaultAvatar(u.ID), u.Avatar)
	assert.Equal(t, entity.DefaultLocation, u.Location)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotNil(t, u.Favorites)
	if u.RatingCount == 0 {
		assert.Zero(t, u.Rating)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	f := NewFactory(nil, nil, Options{Users: 3, ProductsPerUser: 2, Admins: 1, DryRun: true, Seed: 1})

	summary, err := f.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Users, 3)
	require.Len(t, summary.Products, 6)
	assert.Equal(t, entity.RoleAdmin, summary.Users[0].Role)
	assert.Equal(t, entity.RoleUser, summary.Users[2].Role)
	for _, p := range summary.Products {
		assert.NotEmpty(t, p.ID)
	}
}

func TestFactory_SameSeedSameData(t *testing.T) {
	a := NewFactory(nil, nil, Options{Seed: 99}).BuildUser()
	b := NewFactory(nil, nil, Options{Seed: 99}).BuildUser()
	assert.Equal(t, a, b)
}
