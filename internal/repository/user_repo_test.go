package repository_test

import (
	"testing"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffIDsReturnsElevatedRolesOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewUserRepository(db)

	admin := models.User{Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
	staff := models.User{Name: "Agent", Email: "agent@example.com", Role: domain.RoleStaff}
	cust1 := models.User{Name: "C1", Email: "c1@example.com", Role: domain.RoleCustomer}
	cust2 := models.User{Name: "C2", Email: "c2@example.com", Role: domain.RoleCustomer}
	for _, u := range []*models.User{&admin, &staff, &cust1, &cust2} {
		require.NoError(t, db.Create(u).Error)
	}

	ids, err := repo.StaffIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{admin.ID, staff.ID}, ids)
}
