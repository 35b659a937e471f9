package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/SyncSphere7/fou-website/auth"
	"github.com/SyncSphere7/fou-website/core/binder"
	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/session"
	"github.com/SyncSphere7/fou-website/core/validator"
	"github.com/SyncSphere7/fou-website/middleware"
	"github.com/SyncSphere7/fou-website/storage"
)

// loginResponse reports a successful login and where to navigate next.
type loginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

// Login authenticates an admin and upgrades the request session.
//
// Failed attempts consume login budget; a successful one refunds its slot so
// legitimate admins are never locked out by their own activity. The refund is
// best-effort: a limiter hiccup must not fail a valid login.
func (h *Handlers) Login(ctx handler.Context) handler.Response {
	var in validator.LoginInput
	if err := binder.Bind(ctx.Request(), &in); err != nil {
		return response.Error(response.ErrBadRequest.WithMessage("Invalid request body").WithError(err))
	}

	if violations := in.Validate(); len(violations) > 0 {
		return response.Error(response.ErrBadRequest.
			WithMessage("Validation failed").
			WithErrors(violations))
	}

	user, err := h.cfg.Authenticator.Login(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Error(response.ErrUnauthorized.WithMessage("Invalid username or password"))
		}
		return response.Error(storageError(err))
	}

	sess, ok := middleware.GetSession(ctx)
	if !ok {
		return response.Error(response.ErrInternalServerError.
			WithError(errors.New("login route registered without session middleware")))
	}

	role, err := session.ParseRole(user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "admin has unknown role",
			slog.String("username", user.Username),
			slog.String("role", user.Role))
		return response.Error(response.ErrInternalServerError.WithError(err))
	}

	if err := sess.Authenticate(user.ID, user.Username, role); err != nil {
		return response.Error(response.ErrInternalServerError.WithError(err))
	}

	if err := h.cfg.LoginLimiter.Forgive(ctx, middleware.GetClientIP(ctx)); err != nil {
		h.logger.WarnContext(ctx, "failed to refund login budget", slog.Any("error", err))
	}

	redirect := sess.ReturnTo
	if redirect == "" {
		redirect = "/admin/dashboard"
	}
	sess.SetReturnTo("")

	h.logger.InfoContext(ctx, "admin logged in",
		slog.String("username", user.Username),
		slog.String("role", user.Role))

	return response.JSON(loginResponse{Success: true, Redirect: redirect})
}

// Logout destroys the server-side session. Calling it without a live
// session is a no-op with the same outcome, so repeated logouts are safe.
func (h *Handlers) Logout(ctx handler.Context) handler.Response {
	if sess, ok := middleware.GetSession(ctx); ok {
		sess.Logout()
	}
	return response.Redirect("/admin/login")
}

// dashboardResponse aggregates registration and project activity for the
// admin overview.
type dashboardResponse struct {
	Success             bool                    `json:"success"`
	TotalRegistrations  int64                   `json:"total_registrations"`
	ByInterest          []storage.InterestCount `json:"by_interest"`
	RecentRegistrations []registrationView      `json:"recent_registrations"`
	Projects            storage.ProjectStats    `json:"projects"`
}

// Dashboard returns registration and project statistics for the admin
// overview page.
func (h *Handlers) Dashboard(ctx handler.Context) handler.Response {
	counts, err := h.cfg.Store.CountRegistrationsByInterest(ctx)
	if err != nil {
		return response.Error(storageError(err))
	}

	recent, err := h.cfg.Store.ListRecentRegistrations(ctx, 10)
	if err != nil {
		return response.Error(storageError(err))
	}

	projects, err := h.cfg.Store.CountProjects(ctx)
	if err != nil {
		return response.Error(storageError(err))
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}

	return response.JSON(dashboardResponse{
		Success:             true,
		TotalRegistrations:  total,
		ByInterest:          counts,
		RecentRegistrations: h.registrationViews(recent),
		Projects:            projects,
	})
}

// registrationView is the admin-facing shape of a registration row.
// Phone is decrypted for display; a failed decryption shows empty rather
// than an envelope or an error.
type registrationView struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	AgeGroup  string    `json:"age_group,omitempty"`
	Interest  string    `json:"interest"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// usersResponse lists registrations for the admin users page.
type usersResponse struct {
	Success bool               `json:"success"`
	Users   []registrationView `json:"users"`
}

// Users lists the newest registrations with sensitive fields decrypted.
func (h *Handlers) Users(ctx handler.Context) handler.Response {
	regs, err := h.cfg.Store.ListRecentRegistrations(ctx, 100)
	if err != nil {
		return response.Error(storageError(err))
	}

	return response.JSON(usersResponse{Success: true, Users: h.registrationViews(regs)})
}

// projectView is the admin-facing shape of an impact project row.
type projectView struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location,omitempty"`
	Beneficiaries int64      `json:"beneficiaries"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        string     `json:"status"`
	ImageURL      string     `json:"image_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// projectsResponse lists impact projects for the admin projects page.
type projectsResponse struct {
	Success  bool          `json:"success"`
	Projects []projectView `json:"projects"`
}

// Projects lists impact projects, newest first.
func (h *Handlers) Projects(ctx handler.Context) handler.Response {
	projects, err := h.cfg.Store.ListProjects(ctx)
	if err != nil {
		return response.Error(storageError(err))
	}

	views := make([]projectView, 0, len(projects))
	for _, proj := range projects {
		views = append(views, projectView{
			ID:            proj.ID,
			Title:         proj.Title,
			Description:   proj.Description,
			Location:      proj.Location,
			Beneficiaries: proj.Beneficiaries,
			StartDate:     proj.StartDate,
			EndDate:       proj.EndDate,
			Status:        proj.Status,
			ImageURL:      deref(proj.ImageURL),
			CreatedAt:     proj.CreatedAt,
			UpdatedAt:     proj.UpdatedAt,
		})
	}

	return response.JSON(projectsResponse{Success: true, Projects: views})
}

func (h *Handlers) registrationViews(regs []storage.Registration) []registrationView {
	views := make([]registrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, registrationView{
			ID:        reg.ID,
			FullName:  reg.FullName,
			Email:     reg.Email,
			Phone:     h.decryptPhone(reg.Phone),
			Country:   deref(reg.Country),
			City:      deref(reg.City),
			Gender:    deref(reg.Gender),
			AgeGroup:  deref(reg.AgeGroup),
			Interest:  reg.Interest,
			Message:   deref(reg.Message),
			CreatedAt: reg.CreatedAt,
		})
	}
	return views
}

func (h *Handlers) decryptPhone(envelope *string) string {
	if h.cfg.Cipher == nil {
		return ""
	}
	return h.cfg.Cipher.DecryptOrEmpty(envelope)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
