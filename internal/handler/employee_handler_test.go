package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
)

type employeeServiceMock struct {
	listQuery dto.EmployeeListQuery
	list      []models.Employee
	page      *models.Pagination
	getErr    error
	created   dto.EmployeeRequest
	updatedID int
	deletedID int
	deleteErr error
}

func (m *employeeServiceMock) List(ctx context.Context, query dto.EmployeeListQuery) ([]models.Employee, *models.Pagination, error) {
	m.listQuery = query
	return m.list, m.page, nil
}

func (m *employeeServiceMock) Get(ctx context.Context, id int) (*models.Employee, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Employee{ID: id, Name: "Budi"}, nil
}

func (m *employeeServiceMock) Create(ctx context.Context, req dto.EmployeeRequest) (*models.Employee, error) {
	m.created = req
	return &models.Employee{ID: 10, Name: req.Name, Role: models.EmployeeRole(req.Role)}, nil
}

func (m *employeeServiceMock) Update(ctx context.Context, id int, req dto.EmployeeRequest) (*models.Employee, error) {
	m.updatedID = id
	return &models.Employee{ID: id, Name: req.Name}, nil
}

func (m *employeeServiceMock) Delete(ctx context.Context, id int) error {
	m.deletedID = id
	return m.deleteErr
}

func TestEmployeeHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &employeeServiceMock{
		list: []models.Employee{{ID: 1, Name: "Andi"}},
		page: &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1},
	}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodGet, "/api/v1/employees?search=an&roles[]=SALES&roles[]=DRIVER&page=1", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "an", svc.listQuery.Search)
	assert.Equal(t, []string{"SALES", "DRIVER"}, svc.listQuery.Roles)
	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestEmployeeHandlerGetInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewEmployeeHandler(&employeeServiceMock{})

	c, w := newGinContext(http.MethodGet, "/api/v1/employees/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmployeeHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewEmployeeHandler(&employeeServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "karyawan tidak ditemukan")})

	c, w := newGinContext(http.MethodGet, "/api/v1/employees/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "karyawan tidak ditemukan", decode(t, w).Error.Message)
}

func TestEmployeeHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &employeeServiceMock{}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodPost, "/api/v1/employees", []byte(`{"name":"Citra","salary":3500000,"role":"DRIVER","supervisorId":3}`))
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Citra", svc.created.Name)
	require.NotNil(t, svc.created.SupervisorID)
	assert.Equal(t, 3, *svc.created.SupervisorID)

	var emp models.Employee
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &emp))
	assert.Equal(t, 10, emp.ID)
}

func TestEmployeeHandlerUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &employeeServiceMock{}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodPut, "/api/v1/employees/4", []byte(`{"name":"Dedi","role":"STAFF"}`))
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, svc.updatedID)
}

func TestEmployeeHandlerDeleteWithSubordinates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &employeeServiceMock{deleteErr: appErrors.Clone(appErrors.ErrValidation, "Sales masih memiliki bawahan")}
	h := NewEmployeeHandler(svc)

	c, w := newGinContext(http.MethodDelete, "/api/v1/employees/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.Delete(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 3, svc.deletedID)
}

func TestEmployeeHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &employeeServiceMock{}
	h := NewEmployeeHandler(svc)

	c, _ := newGinContext(http.MethodDelete, "/api/v1/employees/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, 5, svc.deletedID)
}
