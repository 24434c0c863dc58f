package client

// Roles recognised by the backend. Permission checks are enforced
// server-side; these constants only shape client payloads.
const (
	RoleManager  = "manager"
	RoleEngineer = "engineer"
	RoleObserver = "observer"
	RoleAdmin    = "admin"
)

// Defect priorities as stored by the backend (Russian literals on the wire).
const (
	PriorityLow      = "Низкий"
	PriorityMedium   = "Средний"
	PriorityHigh     = "Высокий"
	PriorityCritical = "Критический"
)

// Defect statuses as stored by the backend.
const (
	StatusNew       = "Новая"
	StatusInWork    = "В работе"
	StatusInReview  = "На проверке"
	StatusClosed    = "Закрыта"
	StatusCancelled = "Отменена"
)

// Token is the bearer credential returned by the login endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User models an authenticated actor as returned by the backend.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// UserCreate is the registration payload. The role sent to the backend is
// always forced to observer; see AuthService.Register.
type UserCreate struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"role"`
}

// Project is a container for defects.
type Project struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	OwnerID     int    `json:"owner_id"`
}

// ProjectCreate is the create/update payload for projects.
type ProjectCreate struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Defect is a single tracked defect.
type Defect struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	ReporterID  int    `json:"reporter_id"`
	AssigneeID  int    `json:"assignee_id,omitempty"`
	ProjectID   int    `json:"project_id"`
}

// DefectCreate is the payload for creating a defect.
type DefectCreate struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	ProjectID   int    `json:"project_id" validate:"required,gt=0"`
	AssigneeID  int    `json:"assignee_id,omitempty"`
}

// DefectUpdate is the payload for updating a defect. The parent project is
// fixed at creation and cannot be changed.
type DefectUpdate struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	AssigneeID  int    `json:"assignee_id,omitempty"`
}

// Comment belongs to a defect.
type Comment struct {
	ID        int    `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	AuthorID  int    `json:"author_id"`
	DefectID  int    `json:"defect_id"`
}

// CommentCreate is the payload for adding a comment to a defect.
type CommentCreate struct {
	Content  string `json:"content" validate:"required"`
	DefectID int    `json:"defect_id" validate:"required,gt=0"`
}

// Attachment is a file uploaded against a defect.
type Attachment struct {
	ID         int    `json:"id"`
	Filename   string `json:"filename"`
	FilePath   string `json:"file_path"`
	UploadedAt string `json:"uploaded_at"`
	UploaderID int    `json:"uploader_id"`
	DefectID   int    `json:"defect_id"`
}

// AnalyticsSummary aggregates defect health across active projects.
type AnalyticsSummary struct {
	TotalDefects         int     `json:"total_defects"`
	OverdueDefects       int     `json:"overdue_defects"`
	CompletionPercentage float64 `json:"completion_percentage"`
	ActiveProjects       int     `json:"active_projects"`
}

// DefectCountByStatus is one bucket of the status distribution report.
type DefectCountByStatus struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DefectCountByPriority is one bucket of the priority distribution report.
type DefectCountByPriority struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// DefectCreationTrendItem is one day of the creation trend report.
type DefectCreationTrendItem struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ProjectPerformanceItem is one project's row in the performance report.
type ProjectPerformanceItem struct {
	ProjectID            int     `json:"project_id"`
	ProjectTitle         string  `json:"project_title"`
	CompletedDefects     int     `json:"completed_defects"`
	TotalDefects         int     `json:"total_defects"`
	CompletionPercentage float64 `json:"completion_percentage"`
}
