package main

import (
	"context"
	"fmt"
	"os"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/rhacs-labs/acs-ops/internal/api"
	"github.com/rhacs-labs/acs-ops/internal/central"
	"github.com/rhacs-labs/acs-ops/internal/cluster"
	"github.com/rhacs-labs/acs-ops/internal/formatter"
	"github.com/rhacs-labs/acs-ops/internal/logger"
	"github.com/rhacs-labs/acs-ops/internal/profile"
	"github.com/rhacs-labs/acs-ops/internal/reconcile"
	"github.com/rhacs-labs/acs-ops/internal/sequence"
)

var (
	outputFormat string
	dryRun       bool
)

// profile keys cached between invocations
const (
	profileKeyCentralURL = "ROX_CENTRAL_URL"
	profileKeyAPIToken   = "ROX_API_TOKEN"
)

// buildDeps assembles the shared pipeline dependencies. When
// requireCentral is false a failed Central session leaves deps.Central
// nil instead of failing the command.
func buildDeps(ctx context.Context, requireCentral bool) (sequence.Deps, *profile.Store, error) {
	clients, err := cluster.NewClients()
	if err != nil {
		return sequence.Deps{}, nil, err
	}

	deps := sequence.Deps{Cfg: cfg, Clients: clients}

	storePath := cfg.Profile.Path
	if storePath == "" {
		storePath = profile.DefaultPath()
	}
	store, err := profile.Open(storePath)
	if err != nil {
		return sequence.Deps{}, nil, err
	}

	client, err := newCentralClient(ctx, deps, store)
	if err != nil {
		if requireCentral {
			return sequence.Deps{}, nil, err
		}
		logger.Debug().Err(err).Msg("no central session, skipping central-side steps")
	} else {
		deps.Central = client
	}
	return deps, store, nil
}

// newCentralClient builds a Central session from configuration, the
// cached profile, and finally the live route
func newCentralClient(ctx context.Context, deps sequence.Deps, store *profile.Store) (*central.Client, error) {
	endpoint := cfg.Central.Endpoint
	if endpoint == "" {
		endpoint = store.Get(profileKeyCentralURL)
	}
	if endpoint == "" {
		resolved, err := resolveCentralEndpoint(ctx, deps)
		if err != nil {
			return nil, err
		}
		endpoint = resolved
	}

	token := cfg.Central.APIToken
	if token == "" {
		token = store.Get(profileKeyAPIToken)
	}

	return central.NewClient(central.Config{
		BaseURL:       endpoint,
		AdminPassword: cfg.Central.AdminPassword,
		APIToken:      token,
		TokenName:     cfg.Central.TokenName,
		InsecureTLS:   cfg.Central.InsecureTLS,
		Timeout:       cfg.Central.Timeout,
	})
}

// resolveCentralEndpoint reads the admitted route's host
func resolveCentralEndpoint(ctx context.Context, deps sequence.Deps) (string, error) {
	target := reconcile.Target{
		Kind:     reconcile.KindRoute,
		Identity: reconcile.Identity{Namespace: cfg.Central.Namespace, Name: cfg.Central.RouteName},
	}
	mapping, err := cluster.ResourceFor(target)
	if err != nil {
		return "", err
	}

	route, err := deps.Clients.Dynamic.Resource(mapping.Resource).
		Namespace(target.Identity.Namespace).
		Get(ctx, target.Identity.Name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("error looking up central route: %w", err)
	}

	host, found, err := unstructured.NestedString(route.Object, "spec", "host")
	if err != nil || !found || host == "" {
		return "", fmt.Errorf("central route %s has no host", target.Identity)
	}
	return "https://" + host, nil
}

// runPipeline executes the steps, prints the formatted result, persists
// it for the status server, and exits non-zero with one unit per failed
// check
func runPipeline(ctx context.Context, name string, steps []reconcile.Step, deps sequence.Deps, store *profile.Store) error {
	runner := reconcile.NewRunner(&reconcile.Options{Sequence: name, DryRun: dryRun})
	result := runner.Run(ctx, steps)

	format, err := formatter.ParseType(outputFormat)
	if err != nil {
		return err
	}
	f, err := formatter.NewFormatter(format)
	if err != nil {
		return err
	}
	out, err := f.Format(result)
	if err != nil {
		return err
	}
	result.OutputFormatted = out
	fmt.Print(out)

	if err := api.NewFileRunStore(api.DefaultStateDir()).Save(result); err != nil {
		logger.Warn().Err(err).Msg("failed to persist run result")
	}
	persistSession(deps, store)

	if code := result.ExitCode(); code != 0 {
		logger.Error().Int("failed", code).Str("sequence", name).Msg("run finished with failures")
		os.Exit(code)
	}
	return nil
}

// persistSession caches the Central endpoint and token for later runs
func persistSession(deps sequence.Deps, store *profile.Store) {
	if deps.Central == nil || store == nil {
		return
	}
	store.Set(profileKeyCentralURL, deps.Central.BaseURL())
	if token := deps.Central.Token(); token != "" {
		store.Set(profileKeyAPIToken, token)
	}
	if err := store.Flush(); err != nil {
		logger.Warn().Err(err).Msg("failed to persist session profile")
	}
}
