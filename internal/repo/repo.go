// internal/repo/repo.go
package repo

import (
	"context"
	"encoding/json"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"maintdash/internal/db"
	"maintdash/internal/models"
)

// Repo defines the methods the rest of the app uses.
type Repo interface {
	// Users
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, role *models.Role) ([]models.User, error)
	CreateUser(ctx context.Context, in models.UserInput, phc string) (models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in models.UserInput) (models.User, error)
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, name *string, avatarURL *string, phone *string) error

	// Local auth
	CreateLocalCredential(ctx context.Context, uid uuid.UUID, username, phc string) error
	GetLocalCredentialByUsername(ctx context.Context, username string) (models.LocalCredential, models.User, error)
	UpdateLocalPasswordHash(ctx context.Context, userID uuid.UUID, phc string) error
	UserHasTOTP(ctx context.Context, uid uuid.UUID) bool
	SetTOTPSecret(ctx context.Context, uid uuid.UUID, secret, issuer, label string) error
	GetTOTPSecret(ctx context.Context, uid uuid.UUID) (string, bool)

	// Login events
	RecordLoginSuccess(ctx context.Context, username string, ip netip.Addr) error
	RecordLoginFailure(ctx context.Context, username string, ip netip.Addr) error
	GetLastSuccessfulLoginByUsername(ctx context.Context, username string) (time.Time, bool)

	// Reference data
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (models.Department, error)
	CreateDepartment(ctx context.Context, in models.DepartmentInput) (models.Department, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, in models.DepartmentInput) (models.Department, error)
	DeleteDepartment(ctx context.Context, id uuid.UUID) error

	// Equipment
	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	GetEquipment(ctx context.Context, id uuid.UUID) (models.Equipment, error)
	CreateEquipment(ctx context.Context, in models.EquipmentInput) (models.Equipment, error)
	UpdateEquipment(ctx context.Context, id uuid.UUID, in models.EquipmentInput) (models.Equipment, error)
	DeleteEquipment(ctx context.Context, id uuid.UUID) error

	// Maintenance tasks
	ListTasks(ctx context.Context, f models.TaskFilter) ([]models.MaintenanceTask, error)
	GetTask(ctx context.Context, id uuid.UUID) (models.MaintenanceTask, error)
	CreateTask(ctx context.Context, in models.TaskInput) (models.MaintenanceTask, error)
	UpdateTask(ctx context.Context, id uuid.UUID, in models.TaskInput) (models.MaintenanceTask, error)
	CompleteTask(ctx context.Context, id uuid.UUID, c models.TaskCompletion) (models.MaintenanceTask, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// Settings
	ListSettings(ctx context.Context) ([]models.Setting, error)
	PutSetting(ctx context.Context, key string, value json.RawMessage) (models.Setting, error)

	// Notification state
	ListNotificationStates(ctx context.Context, uid uuid.UUID) ([]models.NotificationState, error)
	MarkNotificationsRead(ctx context.Context, uid uuid.UUID, ids []string) error
	DismissNotification(ctx context.Context, uid uuid.UUID, id string) error
	DeleteNotificationStates(ctx context.Context, uid uuid.UUID, ids []string) error

	// Alert dispatch bookkeeping
	DispatchedAlerts(ctx context.Context, channel models.AlertChannel, ids []string) (map[string]bool, error)
	RecordAlertDispatch(ctx context.Context, id string, channel models.AlertChannel) error

	// Supply chain
	ListMaterialRequests(ctx context.Context, status *models.MaterialRequestStatus) ([]models.MaterialRequest, error)
	GetMaterialRequest(ctx context.Context, id uuid.UUID) (models.MaterialRequest, error)
	CreateMaterialRequest(ctx context.Context, requestedBy uuid.UUID, in models.MaterialRequestInput) (models.MaterialRequest, error)
	UpdateMaterialRequest(ctx context.Context, id uuid.UUID, in models.MaterialRequestInput) (models.MaterialRequest, error)
	SetMaterialRequestStatus(ctx context.Context, id uuid.UUID, status models.MaterialRequestStatus) (models.MaterialRequest, error)
	DeleteMaterialRequest(ctx context.Context, id uuid.UUID) error

	ListInvoices(ctx context.Context, status *models.InvoiceStatus) ([]models.ProformaInvoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (models.ProformaInvoice, error)
	CreateInvoice(ctx context.Context, inv models.ProformaInvoice) (models.ProformaInvoice, error)
	SetInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (models.ProformaInvoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

// TxBeginner starts transactions; *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgRepo wraps the Queries and, when available, the pool for transactions.
type pgRepo struct {
	q    *db.Queries
	pool TxBeginner
}

func New(q *db.Queries) Repo { return &pgRepo{q: q} }

// NewWithDB returns a Repo that can run multi-statement work in a transaction.
func NewWithDB(pool TxBeginner, q *db.Queries) Repo { return &pgRepo{q: q, pool: pool} }
