package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/digitalocean/godo"
	"github.com/rs/zerolog"

	"pmmbridge"
	"pmmbridge/internal/api/models"
	"pmmbridge/internal/engine"
)

// CloudClient wraps the managed-database provider API used by the workflow.
type CloudClient interface {
	ValidateToken(ctx context.Context, token string) error
	ListDatabases(ctx context.Context, token string, eng engine.Integration, usePrivate bool, monitored map[string]string) ([]models.DatabaseRecord, error)
	CreateUser(ctx context.Context, token string, dbID string, username string) (*models.MonitoringUser, error)
}

// CloudService talks to the DigitalOcean API through godo. A client is built
// per call because the token belongs to the session, not to the service.
type CloudService struct {
	baseURL string
	logger  zerolog.Logger
}

func NewCloudService() *CloudService {
	return &CloudService{
		baseURL: pmmbridge.GetConfig().DOAPIBase,
		logger:  pmmbridge.Logger,
	}
}

func (slf *CloudService) client(token string) *godo.Client {
	client := godo.NewFromToken(token)
	if slf.baseURL != "" {
		base := slf.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		if u, err := url.Parse(base); err == nil {
			client.BaseURL = u
		}
	}
	return client
}

// ValidateToken issues a low-cost authenticated read against the account
// endpoint and maps rejections to the workflow error taxonomy.
func (slf *CloudService) ValidateToken(ctx context.Context, token string) error {
	_, _, err := slf.client(token).Account.Get(ctx)
	if err != nil {
		return mapProviderError(err, "Invalid DigitalOcean API token.")
	}
	return nil
}

// ListDatabases pages through the provider listing, filters to the requested
// engine and resolves host/port from the public or private connection block.
// The monitored map ("host:port" -> PMM service name) marks records that are
// already registered.
func (slf *CloudService) ListDatabases(ctx context.Context, token string, eng engine.Integration, usePrivate bool, monitored map[string]string) ([]models.DatabaseRecord, error) {
	client := slf.client(token)

	opt := &godo.ListOptions{PerPage: 200}
	var clusters []godo.Database
	for {
		page, resp, err := client.Databases.List(ctx, opt)
		if err != nil {
			return nil, mapProviderError(err, "Invalid DigitalOcean API token.")
		}
		clusters = append(clusters, page...)
		if resp.Links == nil || resp.Links.IsLastPage() {
			break
		}
		current, err := resp.Links.CurrentPage()
		if err != nil {
			break
		}
		opt.Page = current + 1
	}

	records := make([]models.DatabaseRecord, 0, len(clusters))
	for _, db := range clusters {
		if db.EngineSlug != eng.ID() {
			continue
		}

		var host string
		var port int
		if db.Connection != nil {
			host = db.Connection.Host
			port = db.Connection.Port
		}
		if usePrivate && db.PrivateConnection != nil && db.PrivateConnection.Host != "" {
			host = db.PrivateConnection.Host
			if db.PrivateConnection.Port != 0 {
				port = db.PrivateConnection.Port
			}
		}

		serviceName := monitored[fmt.Sprintf("%s:%d", host, port)]
		records = append(records, models.DatabaseRecord{
			ID:             db.ID,
			Name:           db.Name,
			Engine:         db.EngineSlug,
			Region:         db.RegionSlug,
			Host:           host,
			Port:           port,
			NumNodes:       db.NumNodes,
			Status:         db.Status,
			Monitored:      serviceName != "",
			PMMServiceName: serviceName,
		})
	}
	return records, nil
}

// CreateUser provisions a monitoring user on the cluster. A conflict is
// resolved by fetching the existing user when the provider still exposes its
// password; otherwise a UserExistsError carries the username so the caller
// can steer the operator toward manual credential entry.
func (slf *CloudService) CreateUser(ctx context.Context, token string, dbID string, username string) (*models.MonitoringUser, error) {
	client := slf.client(token)

	user, _, err := client.Databases.CreateUser(ctx, dbID, &godo.DatabaseCreateUserRequest{Name: username})
	if err != nil {
		var gerr *godo.ErrorResponse
		if errors.As(err, &gerr) && gerr.Response != nil && gerr.Response.StatusCode == http.StatusConflict {
			if existing := slf.existingUser(ctx, client, dbID, username); existing != nil {
				return existing, nil
			}
			return nil, &models.UserExistsError{Username: username}
		}
		return nil, mapProviderError(err, "Invalid DigitalOcean API token.")
	}
	return &models.MonitoringUser{Username: user.Name, Password: user.Password}, nil
}

func (slf *CloudService) existingUser(ctx context.Context, client *godo.Client, dbID string, username string) *models.MonitoringUser {
	user, _, err := client.Databases.GetUser(ctx, dbID, username)
	if err != nil || user.Password == "" {
		return nil
	}
	return &models.MonitoringUser{Username: user.Name, Password: user.Password}
}

func mapProviderError(err error, authMessage string) error {
	var gerr *godo.ErrorResponse
	if errors.As(err, &gerr) && gerr.Response != nil {
		switch gerr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &models.AuthError{Field: "do_token", Message: authMessage}
		default:
			return &models.ProviderError{Status: gerr.Response.StatusCode, Message: gerr.Message}
		}
	}
	return &models.ConnectivityError{Target: "the DigitalOcean API", Message: err.Error()}
}
