// Package central wraps the RHACS Central REST API used by the
// REST-driven reconciliations: token generation, platform config,
// cluster lookup, compliance standards and runs, and compliance scan
// configurations.
package central

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
)

// Config holds Central client configuration
type Config struct {
	// BaseURL of the Central route, e.g. https://central-stackrox.apps.example.com
	BaseURL string
	// AdminPassword is used once to generate an API token when none is set
	AdminPassword string
	// APIToken is the bearer token for all calls
	APIToken string
	// TokenName names the generated API token
	TokenName string
	// InsecureTLS disables certificate validation. Central serves a
	// self-signed cluster-internal certificate, so this is normally on.
	InsecureTLS bool
	// Timeout bounds each HTTP call
	Timeout time.Duration
}

// Client is a session against the Central API. Created once per
// invocation and reused for all calls within it.
type Client struct {
	http  *req.Client
	cfg   Config
	token string
}

// NewClient creates a new Central API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("central base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.TokenName == "" {
		cfg.TokenName = "acs-ops"
	}

	client := req.C().
		SetBaseURL(cfg.BaseURL).
		SetCommonContentType("application/json").
		SetTimeout(cfg.Timeout)

	if cfg.InsecureTLS {
		client.EnableInsecureSkipVerify()
	}

	c := &Client{http: client, cfg: cfg}
	if cfg.APIToken != "" {
		c.token = cfg.APIToken
		client.SetCommonBearerAuthToken(cfg.APIToken)
	}
	return c, nil
}

// Token returns the session's bearer token, empty when none was
// established yet
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the Central endpoint this session talks to
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// EnsureToken establishes the session's bearer token, generating one via
// basic auth when no token was configured. The generated token is reused
// for every later call in the process.
func (c *Client) EnsureToken(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}
	if c.cfg.AdminPassword == "" {
		return "", &reconcile.DependencyUnmetError{Dependency: "central admin password or API token"}
	}

	body := map[string]interface{}{
		"name":  c.cfg.TokenName,
		"roles": []string{"Admin"},
	}
	var out tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth("admin", c.cfg.AdminPassword).
		SetBody(body).
		SetSuccessResult(&out).
		Post("/v1/apitokens/generate")
	if err != nil {
		return "", &reconcile.TransientError{Op: "generate api token", Err: err}
	}
	if err := classify("generate api token", resp); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &reconcile.TransientError{Op: "generate api token", Err: fmt.Errorf("empty token in response")}
	}

	c.token = out.Token
	c.http.SetCommonBearerAuthToken(out.Token)
	return out.Token, nil
}

// GetConfig retrieves the platform configuration
func (c *Client) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&out).Get("/v1/config")
	if err != nil {
		return nil, &reconcile.TransientError{Op: "get platform config", Err: err}
	}
	if err := classify("get platform config", resp); err != nil {
		return nil, err
	}
	return out, nil
}

// PutConfig replaces the platform configuration
func (c *Client) PutConfig(ctx context.Context, config map[string]interface{}) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(config).Put("/v1/config")
	if err != nil {
		return &reconcile.TransientError{Op: "put platform config", Err: err}
	}
	return classify("put platform config", resp)
}

// Clusters lists the secured clusters known to Central
func (c *Client) Clusters(ctx context.Context) ([]Cluster, error) {
	var out clustersResponse
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&out).Get("/v1/clusters")
	if err != nil {
		return nil, &reconcile.TransientError{Op: "list clusters", Err: err}
	}
	if err := classify("list clusters", resp); err != nil {
		return nil, err
	}
	return out.Clusters, nil
}

// ClusterID looks up a secured cluster's ID by name. A missing cluster is
// a DependencyUnmetError: downstream compliance calls cannot proceed
// without it.
func (c *Client) ClusterID(ctx context.Context, name string) (string, error) {
	clusters, err := c.Clusters(ctx)
	if err != nil {
		return "", err
	}
	for _, cluster := range clusters {
		if cluster.Name == name {
			return cluster.ID, nil
		}
	}
	return "", &reconcile.DependencyUnmetError{Dependency: fmt.Sprintf("secured cluster %q", name)}
}

// ComplianceStandards lists the built-in compliance standards
func (c *Client) ComplianceStandards(ctx context.Context) ([]Standard, error) {
	var out standardsResponse
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&out).Get("/v1/compliance/standards")
	if err != nil {
		return nil, &reconcile.TransientError{Op: "list compliance standards", Err: err}
	}
	if err := classify("list compliance standards", resp); err != nil {
		return nil, err
	}
	return out.Standards, nil
}

// TriggerComplianceRun starts a compliance run for one standard on one
// cluster
func (c *Client) TriggerComplianceRun(ctx context.Context, clusterID, standardID string) error {
	body := map[string]interface{}{
		"selection": map[string]string{
			"clusterId":  clusterID,
			"standardId": standardID,
		},
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post("/v1/compliancemanagement/runs")
	if err != nil {
		return &reconcile.TransientError{Op: "trigger compliance run", Err: err}
	}
	return classify("trigger compliance run", resp)
}

// ScanConfigurations lists the v2 compliance scan configurations
func (c *Client) ScanConfigurations(ctx context.Context) ([]ScanConfiguration, error) {
	var out scanConfigurationsResponse
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&out).Get("/v2/compliance/scan/configurations")
	if err != nil {
		return nil, &reconcile.TransientError{Op: "list scan configurations", Err: err}
	}
	if err := classify("list scan configurations", resp); err != nil {
		return nil, err
	}
	return out.Configurations, nil
}

// CreateScanConfiguration creates a v2 compliance scan configuration
func (c *Client) CreateScanConfiguration(ctx context.Context, sc ScanConfiguration) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(sc).Post("/v2/compliance/scan/configurations")
	if err != nil {
		return &reconcile.TransientError{Op: "create scan configuration", Err: err}
	}
	return classify("create scan configuration", resp)
}

// DeleteScanConfiguration deletes a scan configuration by id. A 404 is
// tolerated: the named resource already being gone is the desired state.
func (c *Client) DeleteScanConfiguration(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/v2/compliance/scan/configurations/" + id)
	if err != nil {
		return &reconcile.TransientError{Op: "delete scan configuration", Err: err}
	}
	if resp.StatusCode == 404 {
		return nil
	}
	return classify("delete scan configuration", resp)
}

// Policies lists the security policies known to Central
func (c *Client) Policies(ctx context.Context) ([]Policy, error) {
	var out policiesResponse
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&out).Get("/v1/policies")
	if err != nil {
		return nil, &reconcile.TransientError{Op: "list policies", Err: err}
	}
	if err := classify("list policies", resp); err != nil {
		return nil, err
	}
	return out.Policies, nil
}

// ReportConfigurations lists the v2 vulnerability report configurations
func (c *Client) ReportConfigurations(ctx context.Context) ([]ReportConfiguration, error) {
	var out reportConfigurationsResponse
	resp, err := c.http.R().SetContext(ctx).SetSuccessResult(&out).Get("/v2/reports/configurations")
	if err != nil {
		return nil, &reconcile.TransientError{Op: "list report configurations", Err: err}
	}
	if err := classify("list report configurations", resp); err != nil {
		return nil, err
	}
	return out.ReportConfigs, nil
}

// classify maps the HTTP response onto the engine's error taxonomy
func classify(op string, resp *req.Response) error {
	return reconcile.ClassifyHTTPStatus(op, resp.StatusCode, resp.String())
}
