package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"

	"github.com/hawkowl/txkube/apierrors"
	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/codec"
	"github.com/hawkowl/txkube/model"
	"github.com/hawkowl/txkube/paths"
)

// NetworkOptions configures a network client. The HTTP client is the
// transport collaborator: TLS material, credentials, timeouts and any
// retry policy live there, not here.
type NetworkOptions struct {
	// BaseURL is the root URL of the API server. Required.
	BaseURL string

	// HTTPClient issues the requests. http.DefaultClient is used when
	// nil, which is only suitable against unauthenticated servers.
	HTTPClient *http.Client

	// Catalog supplies the kind definitions. Required.
	Catalog *apischema.Catalog

	// Logger receives one V(1) event per operation. Discarded when
	// unset.
	Logger logr.Logger
}

// networkClient implements the capability contract over HTTP, encoding
// through the raw codec and addressing through the path resolver. Each
// operation is one request/response exchange; nothing is retried here.
type networkClient struct {
	base    *url.URL
	http    *http.Client
	catalog *apischema.Catalog
	log     logr.Logger
}

// NewNetworkClient creates a client that talks to a real API server.
func NewNetworkClient(opts NetworkOptions) (Interface, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &networkClient{
		base:    base,
		http:    httpClient,
		catalog: opts.Catalog,
		log:     log,
	}, nil
}

// NewNetworkClientForConfig creates a network client from connection
// parameters loaded by a collaborator such as the config package. The
// rest.Config carries the cluster URL and all credential material.
func NewNetworkClientForConfig(cfg *rest.Config, catalog *apischema.Catalog, log logr.Logger) (Interface, error) {
	httpClient, err := rest.HTTPClientFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP client from config: %w", err)
	}
	return NewNetworkClient(NetworkOptions{
		BaseURL:    cfg.Host,
		HTTPClient: httpClient,
		Catalog:    catalog,
		Logger:     log,
	})
}

func (c *networkClient) Create(ctx context.Context, obj model.Object) (model.Object, error) {
	c.logOperation("create", obj)
	body, err := codec.Encode(obj)
	if err != nil {
		return model.Object{}, err
	}
	data, err := c.do(ctx, http.MethodPost, paths.CollectionLocation(obj), body)
	if err != nil {
		return model.Object{}, err
	}
	hint := obj.GroupVersionKind()
	return codec.Decode(c.catalog, data, &hint)
}

func (c *networkClient) Get(ctx context.Context, obj model.Object) (model.Object, error) {
	c.logOperation("get", obj)
	data, err := c.do(ctx, http.MethodGet, paths.ObjectLocation(obj, obj.Name()), nil)
	if err != nil {
		return model.Object{}, err
	}
	hint := obj.GroupVersionKind()
	return codec.Decode(c.catalog, data, &hint)
}

func (c *networkClient) List(ctx context.Context, def *apischema.KindDefinition) (model.Collection, error) {
	c.log.V(1).Info("list", "kind", def.Kind(), "apiVersion", def.APIVersion())
	data, err := c.do(ctx, http.MethodGet, paths.CollectionLocation(def), nil)
	if err != nil {
		return model.Collection{}, err
	}
	hint := def.GroupVersionKind()
	hint.Kind = def.ListKind()
	return codec.DecodeCollection(c.catalog, data, &hint)
}

func (c *networkClient) Replace(ctx context.Context, old, new model.Object) (model.Object, error) {
	if err := sameObject(old, new); err != nil {
		return model.Object{}, err
	}
	c.logOperation("replace", new)
	body, err := codec.Encode(new)
	if err != nil {
		return model.Object{}, err
	}
	data, err := c.do(ctx, http.MethodPut, paths.ObjectLocation(new, new.Name()), body)
	if err != nil {
		return model.Object{}, err
	}
	hint := new.GroupVersionKind()
	return codec.Decode(c.catalog, data, &hint)
}

func (c *networkClient) Delete(ctx context.Context, obj model.Object) error {
	c.logOperation("delete", obj)
	_, err := c.do(ctx, http.MethodDelete, paths.ObjectLocation(obj, obj.Name()), nil)
	return err
}

// do issues one request and returns the response body, converting any
// non-success response into a RemoteError.
func (c *networkClient) do(ctx context.Context, method string, segments []string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.location(segments), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, remoteError(resp.StatusCode, data)
	}
	return data, nil
}

// location joins the base URL with escaped path segments.
func (c *networkClient) location(segments []string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (c *networkClient) logOperation(op string, obj model.Object) {
	c.log.V(1).Info(op,
		"kind", obj.Kind(),
		"apiVersion", obj.APIVersion(),
		"namespace", obj.Namespace(),
		"name", obj.Name(),
	)
}

// remoteError builds a RemoteError from a non-success response,
// preserving the server's Status document when the body carries one.
func remoteError(code int, body []byte) error {
	var status metav1.Status
	if err := json.Unmarshal(body, &status); err == nil && status.Kind == "Status" {
		return apierrors.NewRemoteError(code, &status, status.Message)
	}
	return apierrors.NewRemoteError(code, nil, strings.TrimSpace(string(body)))
}
