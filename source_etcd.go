// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// Note: Etcd API ver was 3.5 at the time this code was written.
// API ref: https://etcd.io/docs/v3.5/learning/api/ .

const (
	etcdDefaultEndpoint = "127.0.0.1:2379"

	// etcdEndpointsEnvName defines an environment variable name which sets
	// the Etcd endpoints, comma separated.
	etcdEndpointsEnvName = "ETCD_ENDPOINTS"
)

const (
	// RemoteValueJSON indicates that content under a key is in JSON format.
	RemoteValueJSON = "json"
	// RemoteValueYAML indicates that content under a key is in YAML format.
	RemoteValueYAML = "yaml"
	// RemoteValuePlain indicates that content under a key is plain text.
	RemoteValuePlain = "plain"
)

// EtcdSource supplies raw values from etcd.
// Keys are fetched with one client call per Load; there is no watching,
// a load is a one-shot operation by design.
type EtcdSource struct {
	key          string              // the key to load
	valueFormat  string              // value format, one of RemoteValue* constants
	clientCfg    clientv3.Config     // client config
	clientOpOpts []clientv3.OpOption // client operation options
	ctx          context.Context     // request context
}

// NewEtcdSource instantiates a new EtcdSource object that supplies
// raw values from etcd.
func NewEtcdSource(key string, opts ...EtcdSourceOption) EtcdSource {
	source := EtcdSource{
		key:         key,
		valueFormat: RemoteValuePlain,
		ctx:         context.Background(),
		clientCfg:   clientv3.Config{DialTimeout: 10 * time.Second},
	}

	// apply options, if any.
	for _, opt := range opts {
		opt(&source)
	}
	if source.clientCfg.Endpoints == nil {
		source.clientCfg.Endpoints = getDefaultEtcdEndpoints()
	}

	return source
}

// Load returns a raw key-value mapping from etcd, or an error
// if something bad happens along the process.
func (source EtcdSource) Load() (map[string]string, error) {
	cli, err := clientv3.New(source.clientCfg)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	resp, err := cli.KV.Get(source.ctx, source.key, source.clientOpOpts...)
	if err != nil {
		return nil, err
	}

	return etcdKVPairsEnviron(resp.Kvs, source.valueFormat)
}

// etcdKVPairsEnviron reduces fetched KV pairs to a raw mapping,
// given the value format provided.
func etcdKVPairsEnviron(kvPairs []*mvccpb.KeyValue, format string) (map[string]string, error) {
	environ := make(map[string]string)
	for _, kvPair := range kvPairs {
		currentKeyEnviron, err := remoteKVPairEnviron(
			string(kvPair.Key),
			kvPair.Value,
			format,
		)
		if err != nil {
			return nil, err
		}

		// Note: here, if a duplicate key exists, it will get overwritten.
		for key, value := range currentKeyEnviron {
			environ[key] = value
		}
	}

	return environ, nil
}

// remoteKVPairEnviron returns the raw mapping for a remote key,
// according to format.
func remoteKVPairEnviron(key string, value []byte, format string) (map[string]string, error) {
	switch format {
	case RemoteValueJSON:
		var document map[string]any
		if err := json.Unmarshal(value, &document); err != nil {
			return nil, err
		}

		return flattenToStringMap(document, defaultFlatKeySeparator)
	case RemoteValueYAML:
		var document map[string]any
		if err := yaml.Unmarshal(value, &document); err != nil {
			return nil, err
		}

		return flattenToStringMap(document, defaultFlatKeySeparator)
	default: // plain
		return map[string]string{
			key: string(bytes.TrimSpace(value)),
		}, nil
	}
}

// getDefaultEtcdEndpoints tries to get etcd endpoints from ENV.
// It defaults on localhost address.
func getDefaultEtcdEndpoints() []string {
	endpoints := []string{etcdDefaultEndpoint}

	// try to get from env variables
	if eps := os.Getenv(etcdEndpointsEnvName); eps != "" {
		endpoints = strings.Split(eps, ",")
	}

	return endpoints
}

// EtcdSourceOption defines optional function for configuring
// an Etcd Source.
type EtcdSourceOption func(*EtcdSource)

// EtcdSourceWithEndpoints sets the etcd host(s) for the client.
// By default, is set to "127.0.0.1:2379".
// Etcd hosts can also be set through ETCD_ENDPOINTS ENV
// (comma separated, if there is more than 1 ep).
func EtcdSourceWithEndpoints(endpoints []string) EtcdSourceOption {
	return func(source *EtcdSource) {
		source.clientCfg.Endpoints = endpoints
	}
}

// EtcdSourceWithPrefix sets the WithPrefix() option on etcd client.
// The loaded key will be treated as a prefix, and thus all the keys
// having that prefix will be returned.
func EtcdSourceWithPrefix() EtcdSourceOption {
	return func(source *EtcdSource) {
		source.clientOpOpts = []clientv3.OpOption{clientv3.WithPrefix()}
	}
}

// EtcdSourceWithContext sets request's context.
// By default, a context.Background() is used.
func EtcdSourceWithContext(ctx context.Context) EtcdSourceOption {
	return func(source *EtcdSource) {
		source.ctx = ctx
		source.clientCfg.Context = ctx
	}
}

// EtcdSourceWithAuth sets the authentication username and password.
func EtcdSourceWithAuth(username, pwd string) EtcdSourceOption {
	return func(source *EtcdSource) {
		source.clientCfg.Username = username
		source.clientCfg.Password = pwd
	}
}

// EtcdSourceWithValueFormat sets the value format for a key.
//
// If is set to RemoteValueJSON, the key's value will be treated as JSON
// and raw values will be extracted from it (flattened, stringified).
//
// If is set to RemoteValueYAML, the key's value will be treated as YAML
// and raw values will be extracted from it (flattened, stringified).
//
// If is set to RemoteValuePlain, the key's value will be treated as plain
// content and the mapping will contain the key and its plain value.
//
// By default, is set to RemoteValuePlain.
func EtcdSourceWithValueFormat(valueFormat string) EtcdSourceOption {
	return func(source *EtcdSource) {
		if valueFormat == RemoteValueJSON ||
			valueFormat == RemoteValueYAML ||
			valueFormat == RemoteValuePlain {
			source.valueFormat = valueFormat
		}
	}
}
