package service

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pmmbridge"
	"pmmbridge/internal/api/models"
	"pmmbridge/internal/engine"
	"pmmbridge/pkg"
)

// MonitoringClient wraps the PMM server HTTP API and the local pmm-admin CLI.
type MonitoringClient interface {
	ValidateCredentials(ctx context.Context, password string) error
	ListServices(ctx context.Context, password string) (map[string]string, error)
	RegisterInstance(eng engine.Integration, password string, inst engine.Instance) (string, error)
	RemoveInstance(eng engine.Integration, password string, serviceName string) (string, error)
}

// PMMService drives a local Percona PMM server. HTTP calls authenticate as
// the admin user; instance registration shells out to pmm-admin so the agent
// handles its own exporter lifecycle.
type PMMService struct {
	baseURL           string
	adminCmd          string
	serverURLOverride string
	httpClient        *http.Client
	logger            zerolog.Logger
}

func NewPMMService() *PMMService {
	cfg := pmmbridge.GetConfig()
	return &PMMService{
		baseURL:           strings.TrimRight(cfg.PMMConfig.BaseURL, "/"),
		adminCmd:          cfg.PMMConfig.AdminCmd,
		serverURLOverride: cfg.PMMConfig.ServerURLOverride,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				// PMM ships a self-signed certificate.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: pmmbridge.Logger,
	}
}

// ValidateCredentials checks the admin password against the services listing,
// the cheapest authenticated endpoint PMM exposes.
func (slf *PMMService) ValidateCredentials(ctx context.Context, password string) error {
	_, err := slf.ListServices(ctx, password)
	return err
}

type pmmService struct {
	ServiceName string `json:"service_name"`
	Address     string `json:"address"`
	Port        int    `json:"port"`
}

// ListServices returns currently monitored services keyed "host:port".
func (slf *PMMService) ListServices(ctx context.Context, password string) (map[string]string, error) {
	endpoint := slf.baseURL + "/v1/management/services"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth("admin", password)

	resp, err := slf.httpClient.Do(req)
	if err != nil {
		return nil, &models.ConnectivityError{Target: fmt.Sprintf("PMM server at %s", slf.baseURL), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &models.AuthError{Field: "pmm_password", Message: "Invalid PMM admin password."}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.ConnectivityError{
			Target:  fmt.Sprintf("PMM server at %s", slf.baseURL),
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// The payload groups services per type; unknown keys are skipped.
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &models.ConnectivityError{Target: fmt.Sprintf("PMM server at %s", slf.baseURL), Message: "malformed services payload"}
	}

	monitored := map[string]string{}
	for _, key := range []string{"postgresql", "mysql", "mongodb", "services"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var services []pmmService
		if err := json.Unmarshal(raw, &services); err != nil {
			continue
		}
		for _, svc := range services {
			if svc.Address == "" {
				continue
			}
			monitored[fmt.Sprintf("%s:%d", svc.Address, svc.Port)] = svc.ServiceName
		}
	}
	return monitored, nil
}

// RegisterInstance runs "pmm-admin add <engine>" for one database instance
// and returns the combined process output.
func (slf *PMMService) RegisterInstance(eng engine.Integration, password string, inst engine.Instance) (string, error) {
	admin, err := slf.adminCommand()
	if err != nil {
		return "", err
	}

	args := append(append([]string{}, admin[1:]...), eng.AddCommand(slf.serverURL(password), inst)...)
	out, err := pkg.RunCommandOutput(admin[0], args...)
	if err != nil {
		return out, registrationError("pmm-admin add", out, err)
	}

	slf.logger.Info().Str("service", inst.Name).Msg("Instance registered with PMM")
	return out, nil
}

// RemoveInstance runs "pmm-admin remove". An unknown service is reported as
// a NotFoundError rather than a hard failure.
func (slf *PMMService) RemoveInstance(eng engine.Integration, password string, serviceName string) (string, error) {
	admin, err := slf.adminCommand()
	if err != nil {
		return "", err
	}

	args := append(append([]string{}, admin[1:]...),
		"remove",
		eng.ServiceType(),
		serviceName,
		"--force",
		"--server-url="+slf.serverURL(password),
		"--server-insecure-tls",
	)
	out, err := pkg.RunCommandOutput(admin[0], args...)
	if err != nil {
		if strings.Contains(strings.ToLower(out), "not found") {
			return out, &models.NotFoundError{Service: serviceName, Output: out}
		}
		return out, registrationError("pmm-admin remove", out, err)
	}

	slf.logger.Info().Str("service", serviceName).Msg("Instance removed from PMM")
	return out, nil
}

// adminCommand resolves the agent binary: PMM_ADMIN_CMD when set (split on
// whitespace so wrappers like "docker exec pmm-client pmm-admin" work),
// otherwise pmm-admin from PATH.
func (slf *PMMService) adminCommand() ([]string, error) {
	if slf.adminCmd != "" {
		return strings.Fields(slf.adminCmd), nil
	}
	if pkg.LookupCommand("pmm-admin") {
		return []string{"pmm-admin"}, nil
	}
	return nil, &models.RegistrationError{Message: "pmm-admin not found. Install the PMM client or set PMM_ADMIN_CMD."}
}

// serverURL builds the --server-url value, embedding the admin password
// URL-encoded, unless an explicit override is configured.
func (slf *PMMService) serverURL(password string) string {
	target := slf.serverURLOverride
	if target == "" {
		hostPart := strings.TrimPrefix(slf.baseURL, "https://")
		target = fmt.Sprintf("https://admin:%s@%s/", url.QueryEscape(password), hostPart)
	}
	if !strings.HasSuffix(target, "/") {
		target += "/"
	}
	return target
}

func registrationError(what string, out string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &models.RegistrationError{
			Message: fmt.Sprintf("%s failed (exit %d)", what, exitErr.ExitCode()),
			Output:  out,
		}
	}
	return &models.RegistrationError{Message: err.Error(), Output: out}
}
