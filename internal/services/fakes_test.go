package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/apperrors"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/tenant"
)

// fakeStore is a shared in-memory backing store for the fake repositories.
// It mirrors the Mongo repositories' behavior: scope filters on adminId,
// uniqueness rules, and the same error kinds.
type fakeStore struct {
	mu         sync.Mutex
	seq        int
	leads      map[string]*models.Lead
	users      map[string]*models.User
	activities []*models.Activity
	comments   map[string]*models.Comment
	reminders  map[string]*models.Reminder
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     map[string]*models.Lead{},
		users:     map[string]*models.User{},
		comments:  map[string]*models.Comment{},
		reminders: map[string]*models.Reminder{},
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// --- lead repository ---

type fakeLeadRepo struct{ store *fakeStore }

func (r *fakeLeadRepo) Insert(_ context.Context, lead *models.Lead) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.leads {
		if existing.AdminID == lead.AdminID && existing.Email == lead.Email {
			return apperrors.Conflictf("duplicate email %s", lead.Email)
		}
		if lead.LeadID != 0 && existing.LeadID == lead.LeadID {
			return apperrors.Conflictf("duplicate leadId %d", lead.LeadID)
		}
	}

	if lead.ID == "" {
		lead.ID = s.nextID("lead")
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	cp := *lead
	s.leads[lead.ID] = &cp
	return nil
}

func (r *fakeLeadRepo) FindByID(_ context.Context, scope tenant.Scope, id string) (*models.Lead, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok || lead.AdminID != scope.TenantID() {
		return nil, apperrors.NotFoundf("lead not found")
	}
	cp := *lead
	return &cp, nil
}

func (r *fakeLeadRepo) List(_ context.Context, scope tenant.Scope, q LeadQuery) ([]*models.Lead, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Lead
	for _, lead := range s.leads {
		if lead.AdminID != scope.TenantID() {
			continue
		}
		if q.Status != "" && lead.Status != q.Status {
			continue
		}
		if q.Unassigned && lead.AssignedTo != nil {
			continue
		}
		if q.AssignedTo != "" && (lead.AssignedTo == nil || *lead.AssignedTo != q.AssignedTo) {
			continue
		}
		cp := *lead
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLeadRepo) Update(_ context.Context, scope tenant.Scope, id string, patch models.LeadPatch) (*models.Lead, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok || lead.AdminID != scope.TenantID() {
		return nil, apperrors.NotFoundf("lead not found")
	}
	if patch.FirstName != nil {
		lead.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		lead.LastName = *patch.LastName
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Phone != nil {
		lead.Phone = *patch.Phone
	}
	if patch.Country != nil {
		lead.Country = *patch.Country
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	if patch.Source != nil {
		lead.Source = *patch.Source
	}
	if patch.Comments != nil {
		lead.Comments = *patch.Comments
	}
	lead.UpdatedAt = time.Now()
	cp := *lead
	return &cp, nil
}

func (r *fakeLeadRepo) SetAssignment(_ context.Context, scope tenant.Scope, id string, assignee *string, at time.Time) (*models.Lead, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok || lead.AdminID != scope.TenantID() {
		return nil, apperrors.NotFoundf("lead not found")
	}
	if assignee != nil {
		v := *assignee
		lead.AssignedTo = &v
		t := at
		lead.AssignedAt = &t
	} else {
		lead.AssignedTo = nil
		lead.AssignedAt = nil
	}
	lead.UpdatedAt = at
	cp := *lead
	return &cp, nil
}

func (r *fakeLeadRepo) DeleteMany(_ context.Context, scope tenant.Scope, ids []string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if lead, ok := s.leads[id]; ok && lead.AdminID == scope.TenantID() {
			delete(s.leads, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeLeadRepo) ListIDs(_ context.Context, scope tenant.Scope) ([]string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, lead := range s.leads {
		if lead.AdminID == scope.TenantID() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeLeadRepo) DeleteByTenant(_ context.Context, scope tenant.Scope) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, lead := range s.leads {
		if lead.AdminID == scope.TenantID() {
			delete(s.leads, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeLeadRepo) EmailExists(_ context.Context, scope tenant.Scope, email string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lead := range s.leads {
		if lead.AdminID == scope.TenantID() && lead.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLeadRepo) LeadIDExists(_ context.Context, leadID int) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lead := range s.leads {
		if lead.LeadID == leadID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLeadRepo) Count(_ context.Context, scope tenant.Scope) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, lead := range s.leads {
		if lead.AdminID == scope.TenantID() {
			count++
		}
	}
	return count, nil
}

// --- user repository ---

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Insert(_ context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperrors.Conflictf("duplicate email %s", user.Email)
		}
	}
	if user.ID == "" {
		user.ID = s.nextID("user")
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFoundf("user not found")
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) FindTenantUser(_ context.Context, scope tenant.Scope, id string) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || (user.ID != scope.TenantID() && user.AdminID != scope.TenantID()) {
		return nil, apperrors.NotFoundf("user not found")
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) ListAgents(_ context.Context, scope tenant.Scope) ([]*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.User
	for _, user := range s.users {
		if user.Role == models.RoleAgent && user.AdminID == scope.TenantID() {
			cp := *user
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) CountAgents(_ context.Context, scope tenant.Scope) (int64, error) {
	agents, _ := r.ListAgents(context.Background(), scope)
	return int64(len(agents)), nil
}

func (r *fakeUserRepo) SetStatus(_ context.Context, scope tenant.Scope, id string, status models.UserStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || (user.ID != scope.TenantID() && user.AdminID != scope.TenantID()) {
		return apperrors.NotFoundf("user not found")
	}
	user.Status = status
	return nil
}

func (r *fakeUserRepo) DeleteAgents(_ context.Context, scope tenant.Scope) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, user := range s.users {
		if user.Role == models.RoleAgent && user.AdminID == scope.TenantID() {
			delete(s.users, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperrors.NotFoundf("user not found")
	}
	delete(s.users, id)
	return nil
}

// --- activity repository ---

type fakeActivityRepo struct{ store *fakeStore }

func (r *fakeActivityRepo) Insert(_ context.Context, activity *models.Activity) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.ID == "" {
		activity.ID = s.nextID("activity")
	}
	cp := *activity
	s.activities = append(s.activities, &cp)
	return nil
}

func (r *fakeActivityRepo) list(scope tenant.Scope, limit int64, match func(*models.Activity) bool) []*models.Activity {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Activity
	// newest first
	for i := len(s.activities) - 1; i >= 0; i-- {
		a := s.activities[i]
		if a.AdminID != scope.TenantID() || !match(a) {
			continue
		}
		cp := *a
		out = append(out, &cp)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out
}

func (r *fakeActivityRepo) ListByLead(_ context.Context, scope tenant.Scope, leadRef string, limit int64) ([]*models.Activity, error) {
	return r.list(scope, limit, func(a *models.Activity) bool { return a.LeadRef == leadRef }), nil
}

func (r *fakeActivityRepo) ListByTenant(_ context.Context, scope tenant.Scope, limit int64) ([]*models.Activity, error) {
	return r.list(scope, limit, func(*models.Activity) bool { return true }), nil
}

func (r *fakeActivityRepo) ListByUser(_ context.Context, scope tenant.Scope, userID string, limit int64) ([]*models.Activity, error) {
	return r.list(scope, limit, func(a *models.Activity) bool { return a.UserID == userID }), nil
}

func (r *fakeActivityRepo) AggregateByDay(_ context.Context, scope tenant.Scope, days int) ([]models.ActivityDayCount, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	counts := map[string]int64{}
	for _, a := range s.activities {
		if a.AdminID != scope.TenantID() || a.Timestamp.Before(cutoff) {
			continue
		}
		counts[a.Timestamp.Format("2006-01-02")+"|"+string(a.Type)]++
	}

	var out []models.ActivityDayCount
	for key, count := range counts {
		parts := strings.SplitN(key, "|", 2)
		out = append(out, models.ActivityDayCount{
			Day:   parts[0],
			Type:  models.ActivityType(parts[1]),
			Count: count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (r *fakeActivityRepo) DeleteByLeads(_ context.Context, scope tenant.Scope, leadRefs []string) (int64, error) {
	refs := map[string]bool{}
	for _, ref := range leadRefs {
		refs[ref] = true
	}
	return r.deleteWhere(func(a *models.Activity) bool {
		return a.AdminID == scope.TenantID() && refs[a.LeadRef]
	}), nil
}

func (r *fakeActivityRepo) DeleteByTenant(_ context.Context, scope tenant.Scope) (int64, error) {
	return r.deleteWhere(func(a *models.Activity) bool {
		return a.AdminID == scope.TenantID()
	}), nil
}

func (r *fakeActivityRepo) deleteWhere(match func(*models.Activity) bool) int64 {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*models.Activity
	var deleted int64
	for _, a := range s.activities {
		if match(a) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	s.activities = kept
	return deleted
}

// --- comment repository ---

type fakeCommentRepo struct{ store *fakeStore }

func (r *fakeCommentRepo) Insert(_ context.Context, comment *models.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID == "" {
		comment.ID = s.nextID("comment")
	}
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) FindByID(_ context.Context, scope tenant.Scope, leadRef, commentID string) (*models.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok || c.AdminID != scope.TenantID() || c.LeadRef != leadRef {
		return nil, apperrors.NotFoundf("comment not found")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) ListByLead(_ context.Context, scope tenant.Scope, leadRef string) ([]*models.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Comment
	for _, c := range s.comments {
		if c.AdminID == scope.TenantID() && c.LeadRef == leadRef {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, scope tenant.Scope, leadRef, commentID, content string, at time.Time) (*models.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok || c.AdminID != scope.TenantID() || c.LeadRef != leadRef {
		return nil, apperrors.NotFoundf("comment not found")
	}
	c.Content = content
	c.UpdatedAt = at
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, scope tenant.Scope, leadRef, commentID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok || c.AdminID != scope.TenantID() || c.LeadRef != leadRef {
		return apperrors.NotFoundf("comment not found")
	}
	delete(s.comments, commentID)
	return nil
}

func (r *fakeCommentRepo) DeleteByLeads(_ context.Context, scope tenant.Scope, leadRefs []string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := map[string]bool{}
	for _, ref := range leadRefs {
		refs[ref] = true
	}
	var deleted int64
	for id, c := range s.comments {
		if c.AdminID == scope.TenantID() && refs[c.LeadRef] {
			delete(s.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeCommentRepo) DeleteByTenant(_ context.Context, scope tenant.Scope) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, c := range s.comments {
		if c.AdminID == scope.TenantID() {
			delete(s.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- reminder repository ---

type fakeReminderRepo struct{ store *fakeStore }

func (r *fakeReminderRepo) Insert(_ context.Context, reminder *models.Reminder) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if reminder.ID == "" {
		reminder.ID = s.nextID("reminder")
	}
	cp := *reminder
	s.reminders[reminder.ID] = &cp
	return nil
}

func (r *fakeReminderRepo) FindByID(_ context.Context, scope tenant.Scope, id string) (*models.Reminder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, ok := s.reminders[id]
	if !ok || rem.AdminID != scope.TenantID() {
		return nil, apperrors.NotFoundf("reminder not found")
	}
	cp := *rem
	return &cp, nil
}

func (r *fakeReminderRepo) ListOpen(_ context.Context, scope tenant.Scope, assignedTo string) ([]*models.Reminder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Reminder
	for _, rem := range s.reminders {
		if rem.AdminID != scope.TenantID() {
			continue
		}
		if rem.Status != models.ReminderPending && rem.Status != models.ReminderSnoozed {
			continue
		}
		if assignedTo != "" && rem.AssignedTo != assignedTo {
			continue
		}
		cp := *rem
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReminderRepo) SetStatus(_ context.Context, scope tenant.Scope, id string, status models.ReminderStatus, snoozedUntil *time.Time) (*models.Reminder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, ok := s.reminders[id]
	if !ok || rem.AdminID != scope.TenantID() {
		return nil, apperrors.NotFoundf("reminder not found")
	}
	rem.Status = status
	rem.SnoozedUntil = snoozedUntil
	rem.UpdatedAt = time.Now()
	cp := *rem
	return &cp, nil
}

func (r *fakeReminderRepo) DeleteByLeads(_ context.Context, scope tenant.Scope, leadRefs []string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := map[string]bool{}
	for _, ref := range leadRefs {
		refs[ref] = true
	}
	var deleted int64
	for id, rem := range s.reminders {
		if rem.AdminID == scope.TenantID() && refs[rem.LeadRef] {
			delete(s.reminders, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeReminderRepo) DeleteByTenant(_ context.Context, scope tenant.Scope) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rem := range s.reminders {
		if rem.AdminID == scope.TenantID() {
			delete(s.reminders, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- fixture ---

// fixture wires every service over one shared fake store.
type fixture struct {
	store       *fakeStore
	leadRepo    *fakeLeadRepo
	userRepo    *fakeUserRepo
	activities  *fakeActivityRepo
	commentRepo *fakeCommentRepo
	reminders   *fakeReminderRepo

	activitySvc   *ActivityService
	leadSvc       *LeadService
	assignmentSvc *AssignmentService
	commentSvc    *CommentService
	reminderSvc   *ReminderService
	userSvc       *UserService
	teardownSvc   *TeardownService
	limiter       *UsageLimiter
}

func newFixture() *fixture {
	store := newFakeStore()
	f := &fixture{
		store:       store,
		leadRepo:    &fakeLeadRepo{store: store},
		userRepo:    &fakeUserRepo{store: store},
		activities:  &fakeActivityRepo{store: store},
		commentRepo: &fakeCommentRepo{store: store},
		reminders:   &fakeReminderRepo{store: store},
	}

	log := zap.NewNop()
	f.activitySvc = NewActivityService(f.activities, nil, log)
	f.limiter = NewUsageLimiter(f.userRepo, f.leadRepo, QuotaConfig{
		TrialDays:       3,
		DefaultMaxLeads: 50,
		DefaultMaxUsers: 1,
	})
	idgen := NewLeadIDGenerator(f.leadRepo)
	f.leadSvc = NewLeadService(f.leadRepo, f.commentRepo, f.reminders, f.activitySvc, idgen, f.limiter, log)
	f.assignmentSvc = NewAssignmentService(f.leadRepo, f.userRepo, f.activitySvc, log)
	f.commentSvc = NewCommentService(f.commentRepo, f.leadRepo, f.userRepo, f.activitySvc, log)
	f.reminderSvc = NewReminderService(f.reminders, f.leadRepo, f.userRepo, f.activitySvc, log)
	f.userSvc = NewUserService(f.userRepo, f.activitySvc, f.limiter, log)
	f.teardownSvc = NewTeardownService(f.userRepo, f.leadRepo, f.activities, f.commentRepo, f.reminders, log)
	return f
}

// seedAdmin creates a subscribed tenant admin with generous limits.
func (f *fixture) seedAdmin(id string) tenant.Caller {
	f.store.mu.Lock()
	f.store.users[id] = &models.User{
		ID:         id,
		Email:      id + "@example.com",
		FirstName:  "Admin",
		LastName:   id,
		Role:       models.RoleAdmin,
		Status:     models.UserActive,
		Subscribed: true,
		MaxLeads:   Unlimited,
		MaxUsers:   Unlimited,
	}
	f.store.mu.Unlock()
	return tenant.Caller{UserID: id, Role: models.RoleAdmin}
}

// seedAgent creates an active agent under the given tenant.
func (f *fixture) seedAgent(id, tenantID string) tenant.Caller {
	f.store.mu.Lock()
	f.store.users[id] = &models.User{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: "Agent",
		LastName:  id,
		Role:      models.RoleAgent,
		Status:    models.UserActive,
		AdminID:   tenantID,
		CreatedBy: tenantID,
	}
	f.store.mu.Unlock()
	return tenant.Caller{UserID: id, Role: models.RoleAgent, TenantID: tenantID}
}

// seedLead creates a lead directly in the store, bypassing quota and audit.
func (f *fixture) seedLead(id, tenantID, email string, assignedTo *string) *models.Lead {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	lead := &models.Lead{
		ID:         id,
		LeadID:     10000 + len(f.store.leads),
		FirstName:  "Lead",
		LastName:   id,
		Email:      email,
		Status:     models.LeadStatusNew,
		AssignedTo: assignedTo,
		AdminID:    tenantID,
		CreatedBy:  tenantID,
	}
	f.store.leads[id] = lead
	return lead
}

// tenantActivities returns all activity entries for a tenant, oldest first.
func (f *fixture) tenantActivities(tenantID string) []*models.Activity {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Activity
	for _, a := range f.store.activities {
		if a.AdminID == tenantID {
			out = append(out, a)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func adminCaller(id string) tenant.Caller {
	return tenant.Caller{UserID: id, Role: models.RoleAdmin}
}

func agentCaller(id, tenantID string) tenant.Caller {
	return tenant.Caller{UserID: id, Role: models.RoleAgent, TenantID: tenantID}
}

func mustScope(t *testing.T, caller tenant.Caller) tenant.Scope {
	t.Helper()
	scope, err := tenant.Resolve(caller)
	require.NoError(t, err)
	return scope
}
