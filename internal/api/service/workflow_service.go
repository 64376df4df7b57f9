package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"pmmbridge/internal/api/handler/response"
	"pmmbridge/internal/api/models"
	"pmmbridge/internal/engine"
)

const defaultMonitoringUser = "pmm_monitor"

// WorkflowService sequences the five onboarding steps over a per-session
// state object. Each step is gated on the previous one; "start over" is the
// only reset path. All outbound calls are synchronous, and batch integration
// runs one instance at a time so pmm-admin is never invoked concurrently
// with itself.
type WorkflowService struct {
	store  SessionStore
	cloud  CloudClient
	pmm    MonitoringClient
	probe  CredentialProber
	logger zerolog.Logger
}

func NewWorkflowService(store SessionStore, cloud CloudClient, pmm MonitoringClient, logger zerolog.Logger) *WorkflowService {
	return &WorkflowService{
		store:  store,
		cloud:  cloud,
		pmm:    pmm,
		probe:  VerifyMonitoringCredential,
		logger: logger,
	}
}

// GetOrCreate loads the session for id, creating a fresh one at step 1 when
// the id is unknown or expired.
func (slf *WorkflowService) GetOrCreate(id string) (*models.Session, error) {
	sess, err := slf.store.Get(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = models.NewSession(id)
		if err := slf.store.Save(sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// ValidateToken runs step 1a. The token is kept in the session only after
// the provider accepted it.
func (slf *WorkflowService) ValidateToken(ctx context.Context, sess *models.Session, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &models.ValidationError{Message: "DigitalOcean API token is required."}
	}

	if err := slf.cloud.ValidateToken(ctx, token); err != nil {
		sess.TokenValid = false
		_ = slf.store.Save(sess)
		return err
	}

	sess.DOToken = token
	sess.TokenValid = true
	slf.advanceAfterCredentials(sess)
	return slf.store.Save(sess)
}

// ValidatePMM runs step 1b against the PMM server.
func (slf *WorkflowService) ValidatePMM(ctx context.Context, sess *models.Session, password string) error {
	if password == "" {
		return &models.ValidationError{Message: "PMM admin password is required."}
	}

	if err := slf.pmm.ValidateCredentials(ctx, password); err != nil {
		sess.PMMValid = false
		_ = slf.store.Save(sess)
		return err
	}

	sess.PMMPassword = password
	sess.PMMValid = true
	slf.advanceAfterCredentials(sess)
	return slf.store.Save(sess)
}

func (slf *WorkflowService) advanceAfterCredentials(sess *models.Session) {
	if sess.CredentialsValid() && sess.Step < models.StepEngine {
		sess.Step = models.StepEngine
	}
}

// Engines lists every known engine; unsupported ones are shown but flagged.
func (slf *WorkflowService) Engines() []response.EngineInfo {
	all := engine.All()
	infos := make([]response.EngineInfo, 0, len(all))
	for _, integ := range all {
		infos = append(infos, response.EngineInfo{
			ID:        integ.ID(),
			Name:      integ.DisplayName(),
			Supported: integ.Supported(),
		})
	}
	return infos
}

// ListDatabases runs step 3: a fresh provider listing for the chosen engine,
// cross-referenced with PMM's monitored services. Choosing an engine here is
// what commits it to the session.
func (slf *WorkflowService) ListDatabases(ctx context.Context, sess *models.Session, engineID string, usePrivate bool) ([]models.DatabaseRecord, error) {
	if !sess.CredentialsValid() {
		return nil, &models.ValidationError{Message: "Validate your DigitalOcean token and PMM password first."}
	}

	eng, err := engine.ForIDSupported(engineID)
	if err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}

	records, err := slf.fetchDatabases(ctx, sess, eng, usePrivate)
	if err != nil {
		return nil, err
	}

	// Changing the engine or the endpoint preference invalidates any earlier
	// selection; the hosts it was made against are no longer the ones in play.
	if sess.Engine != eng.ID() || sess.UsePrivate != usePrivate {
		sess.ResetDownstream(models.StepDiscovery)
	}
	sess.Engine = eng.ID()
	sess.UsePrivate = usePrivate
	if sess.Step < models.StepDiscovery {
		sess.Step = models.StepDiscovery
	}
	if err := slf.store.Save(sess); err != nil {
		return nil, err
	}
	return records, nil
}

func (slf *WorkflowService) fetchDatabases(ctx context.Context, sess *models.Session, eng engine.Integration, usePrivate bool) ([]models.DatabaseRecord, error) {
	// The monitored map is best-effort: a PMM hiccup degrades the listing,
	// it does not block discovery.
	monitored, err := slf.pmm.ListServices(ctx, sess.PMMPassword)
	if err != nil {
		slf.logger.Warn().Err(err).Msg("Could not list monitored services")
		monitored = map[string]string{}
	}
	return slf.cloud.ListDatabases(ctx, sess.DOToken, eng, usePrivate, monitored)
}

// SelectDatabases commits the operator's choice for step 4. The listing is
// re-fetched so offline or already-monitored clusters cannot be smuggled in.
func (slf *WorkflowService) SelectDatabases(ctx context.Context, sess *models.Session, ids []string) ([]models.SelectedDatabase, error) {
	if sess.Step < models.StepDiscovery || sess.Engine == "" {
		return nil, &models.ValidationError{Message: "Discover databases before selecting them."}
	}
	if len(ids) == 0 {
		return nil, &models.ValidationError{Message: "Select at least one database."}
	}

	eng, err := engine.ForIDSupported(sess.Engine)
	if err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}
	records, err := slf.fetchDatabases(ctx, sess, eng, sess.UsePrivate)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.DatabaseRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	selected := make([]models.SelectedDatabase, 0, len(ids))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			return nil, &models.ValidationError{Message: "Unknown database id: " + id}
		}
		if rec.Monitored {
			return nil, &models.ValidationError{Message: rec.Name + " is already monitored; remove it before selecting it again."}
		}
		if !rec.Online() {
			return nil, &models.ValidationError{Message: rec.Name + " is not online and cannot be selected."}
		}
		selected = append(selected, models.SelectedDatabase{
			ID:   rec.ID,
			Name: rec.Name,
			Host: rec.Host,
			Port: rec.Port,
		})
	}

	sess.Selected = selected
	sess.Credentials = map[string]models.MonitoringCredential{}
	sess.Step = models.StepProvisioning
	if err := slf.store.Save(sess); err != nil {
		return nil, err
	}
	return selected, nil
}

// AutoProvisionUser creates a monitoring user on one selected database. A
// UserExistsError propagates distinctly so the UI can offer manual entry.
func (slf *WorkflowService) AutoProvisionUser(ctx context.Context, sess *models.Session, dbID string, username string) (*models.MonitoringUser, error) {
	if sess.Step < models.StepProvisioning || !sess.IsSelected(dbID) {
		return nil, &models.ValidationError{Message: "Database is not part of the current selection."}
	}
	if username == "" {
		username = defaultMonitoringUser
	}

	user, err := slf.cloud.CreateUser(ctx, sess.DOToken, dbID, username)
	if err != nil {
		return nil, err
	}

	sess.Credentials[dbID] = models.MonitoringCredential{
		Mode:     models.CredentialModeAuto,
		Username: user.Username,
		Password: user.Password,
		Ready:    true,
	}
	if err := slf.store.Save(sess); err != nil {
		return nil, err
	}
	return user, nil
}

// SetManualCredential stores operator-supplied credentials for one selected
// database, probing them against the cluster before marking them ready.
func (slf *WorkflowService) SetManualCredential(ctx context.Context, sess *models.Session, dbID string, username string, password string) error {
	if sess.Step < models.StepProvisioning || !sess.IsSelected(dbID) {
		return &models.ValidationError{Message: "Database is not part of the current selection."}
	}

	eng, err := engine.ForIDSupported(sess.Engine)
	if err != nil {
		return &models.ValidationError{Message: err.Error()}
	}

	var target models.SelectedDatabase
	for _, db := range sess.Selected {
		if db.ID == dbID {
			target = db
			break
		}
	}

	cred := models.MonitoringCredential{
		Mode:     models.CredentialModeManual,
		Username: username,
		Password: password,
	}
	if err := slf.probe(eng, engine.Instance{
		Name:     target.Name,
		Host:     target.Host,
		Port:     portOrDefault(target.Port, eng),
		Username: username,
		Password: password,
	}); err != nil {
		sess.Credentials[dbID] = cred
		_ = slf.store.Save(sess)
		return err
	}

	cred.Ready = true
	sess.Credentials[dbID] = cred
	return slf.store.Save(sess)
}

// IntegrateAll runs step 5 over the selection in order. Failures are
// per-item: one database failing never aborts the rest. Credentials are
// discarded once the run completes.
func (slf *WorkflowService) IntegrateAll(ctx context.Context, sess *models.Session) ([]response.IntegrationResult, error) {
	if sess.Step < models.StepProvisioning || len(sess.Selected) == 0 {
		return nil, &models.ValidationError{Message: "Select databases and provision credentials first."}
	}
	if !sess.AllCredentialsReady() {
		return nil, &models.ValidationError{Message: "Every selected database needs a ready monitoring credential before integration."}
	}

	eng, err := engine.ForIDSupported(sess.Engine)
	if err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}

	sess.Step = models.StepIntegration
	results := make([]response.IntegrationResult, 0, len(sess.Selected))
	for _, db := range sess.Selected {
		cred := sess.Credentials[db.ID]
		inst := engine.Instance{
			Name:     db.Name,
			Host:     db.Host,
			Port:     portOrDefault(db.Port, eng),
			Username: cred.Username,
			Password: cred.Password,
		}

		out, err := slf.pmm.RegisterInstance(eng, sess.PMMPassword, inst)
		result := response.IntegrationResult{ID: db.ID, Name: db.Name, Output: out}
		if err != nil {
			result.Message = err.Error()
			var regErr *models.RegistrationError
			if errors.As(err, &regErr) {
				result.Output = regErr.Output
			}
		} else {
			result.OK = true
			result.PostSteps = eng.PostSteps(inst)
		}
		results = append(results, result)
	}

	sess.Credentials = map[string]models.MonitoringCredential{}
	if err := slf.store.Save(sess); err != nil {
		return nil, err
	}
	return results, nil
}

// IntegrateInstance registers a single, explicitly described instance, the
// per-item form of step 5.
func (slf *WorkflowService) IntegrateInstance(ctx context.Context, sess *models.Session, engineID string, inst engine.Instance) (string, []engine.PostStep, error) {
	if !sess.CredentialsValid() {
		return "", nil, &models.ValidationError{Message: "Validate your DigitalOcean token and PMM password first."}
	}
	eng, err := engine.ForIDSupported(engineID)
	if err != nil {
		return "", nil, &models.ValidationError{Message: err.Error()}
	}
	inst.Port = portOrDefault(inst.Port, eng)

	out, err := slf.pmm.RegisterInstance(eng, sess.PMMPassword, inst)
	if err != nil {
		return out, nil, err
	}
	return out, eng.PostSteps(inst), nil
}

// RemoveService unregisters a monitored service. Works for any known engine,
// including stubs, since removal only needs the PMM service type.
func (slf *WorkflowService) RemoveService(ctx context.Context, sess *models.Session, engineID string, serviceName string) (string, error) {
	if !sess.PMMValid {
		return "", &models.ValidationError{Message: "Validate your PMM password first."}
	}
	eng, err := engine.ForID(engineID)
	if err != nil {
		return "", &models.ValidationError{Message: err.Error()}
	}
	return slf.pmm.RemoveInstance(eng, sess.PMMPassword, serviceName)
}

// StartOver wipes the session and returns a fresh one at step 1. This is the
// only reset path.
func (slf *WorkflowService) StartOver(sess *models.Session) (*models.Session, error) {
	if err := slf.store.Delete(sess.ID); err != nil {
		return nil, err
	}
	fresh := models.NewSession(sess.ID)
	if err := slf.store.Save(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// State projects the session into its secret-free response form.
func (slf *WorkflowService) State(sess *models.Session) response.SessionState {
	ready := make(map[string]bool, len(sess.Credentials))
	for id, cred := range sess.Credentials {
		ready[id] = cred.Ready
	}
	return response.SessionState{
		OK:              true,
		Step:            int(sess.Step),
		TokenValid:      sess.TokenValid,
		PMMValid:        sess.PMMValid,
		Engine:          sess.Engine,
		UsePrivate:      sess.UsePrivate,
		Selected:        sess.Selected,
		CredentialReady: ready,
	}
}

func portOrDefault(port int, eng engine.Integration) int {
	if port == 0 {
		return eng.DefaultPort()
	}
	return port
}
