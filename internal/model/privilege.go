package model

// Privilege is a permission code granted through roles or directly to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "order:update_status"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivSupplyCreate = "supply:create"
	PrivSupplyUpdate = "supply:update"
	PrivSupplyDelete = "supply:delete"
	PrivStockAdjust  = "stock:adjust"

	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"
	PrivRecipeUpdate  = "recipe:update"

	PrivOrderCreate       = "order:create"
	PrivOrderUpdate       = "order:update"
	PrivOrderUpdateStatus = "order:update_status"
	PrivOrderDelete       = "order:delete"

	PrivSupplierCreate = "supplier:create"
	PrivSupplierUpdate = "supplier:update"
	PrivSupplierDelete = "supplier:delete"

	PrivDashboardView = "dashboard:view"
)

// DefaultPrivileges are seeded on startup.
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivSupplyCreate, Name: "Create Supply"},
	{Code: PrivSupplyUpdate, Name: "Update Supply"},
	{Code: PrivSupplyDelete, Name: "Delete Supply"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivRecipeUpdate, Name: "Update Recipe"},
	{Code: PrivOrderCreate, Name: "Create Order"},
	{Code: PrivOrderUpdate, Name: "Update Order"},
	{Code: PrivOrderUpdateStatus, Name: "Change Order Status"},
	{Code: PrivOrderDelete, Name: "Delete Order"},
	{Code: PrivSupplierCreate, Name: "Create Supplier"},
	{Code: PrivSupplierUpdate, Name: "Update Supplier"},
	{Code: PrivSupplierDelete, Name: "Delete Supplier"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// IsUserManagement reports privileges reserved to MASTER_ADMIN.
func IsUserManagement(code string) bool {
	switch code {
	case PrivUserCreate, PrivUserDelete, PrivUserUpdatePrivilege:
		return true
	}
	return false
}
