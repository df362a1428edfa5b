// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/actforgood/xenv"
	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"
	"gopkg.in/yaml.v3"
)

type etcdKVServer struct {
	rangeCallback func(context.Context, *pb.RangeRequest) (*pb.RangeResponse, error)
}

func (svr *etcdKVServer) Range(ctx context.Context, req *pb.RangeRequest) (*pb.RangeResponse, error) {
	if svr.rangeCallback != nil {
		return svr.rangeCallback(ctx, req)
	}

	return &pb.RangeResponse{}, nil
}

func (svr *etcdKVServer) Put(context.Context, *pb.PutRequest) (*pb.PutResponse, error) {
	return &pb.PutResponse{}, nil
}

func (svr *etcdKVServer) DeleteRange(context.Context, *pb.DeleteRangeRequest) (*pb.DeleteRangeResponse, error) {
	return &pb.DeleteRangeResponse{}, nil
}

func (svr *etcdKVServer) Txn(context.Context, *pb.TxnRequest) (*pb.TxnResponse, error) {
	return &pb.TxnResponse{}, nil
}

func (svr *etcdKVServer) Compact(context.Context, *pb.CompactionRequest) (*pb.CompactionResponse, error) {
	return &pb.CompactionResponse{}, nil
}

type etcdAuthServer struct {
	*pb.UnimplementedAuthServer
	authenticateCallback func(context.Context, *pb.AuthenticateRequest) (*pb.AuthenticateResponse, error)
}

func (svr etcdAuthServer) Authenticate(
	ctx context.Context,
	req *pb.AuthenticateRequest,
) (*pb.AuthenticateResponse, error) {
	if svr.authenticateCallback != nil {
		return svr.authenticateCallback(ctx, req)
	}

	return &pb.AuthenticateResponse{Token: "mock-token"}, nil
}

// startEtcdKVMockServer starts an etcd key-value grpc mock server.
func startEtcdKVMockServer(
	t *testing.T,
	key string,
	returnedKvs []*mvccpb.KeyValue,
	returnedErr error,
) (*grpc.Server, string) {
	t.Helper()

	rangeCallback := func(_ context.Context, rr *pb.RangeRequest) (*pb.RangeResponse, error) {
		assertEqual(t, key, string(rr.Key))

		if returnedErr != nil {
			return nil, returnedErr
		}

		return &pb.RangeResponse{
			Kvs:   returnedKvs,
			More:  false,
			Count: int64(len(returnedKvs)),
		}, nil
	}
	kvSvr := etcdKVServer{rangeCallback: rangeCallback}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	svr := grpc.NewServer()
	pb.RegisterKVServer(svr, &kvSvr)
	go func(svr *grpc.Server, l net.Listener) {
		_ = svr.Serve(l)
	}(svr, ln)

	return svr, ln.Addr().String()
}

var etcdResponseKvs = map[string]map[bool][]*mvccpb.KeyValue{
	xenv.RemoteValueJSON: {
		true: {
			{
				Key:   []byte("etcd_json_key"),
				Value: []byte(`{"etcd_json_foo": "bar", "db": {"port": 5432}}`),
			},
			{
				Key:   []byte("etcd_json_key/subkey"),
				Value: []byte(`{"etcd_json_abc": "xyz"}`),
			},
		},
		false: {
			{
				Key:   []byte("etcd_json_key"),
				Value: []byte(`{"etcd_json_foo": "bar", "db": {"port": 5432}}`),
			},
		},
	},
	xenv.RemoteValueYAML: {
		true: {
			{
				Key: []byte("etcd_yaml_key"),
				Value: []byte(`etcd_yaml_foo: bar
db:
  port: 5432`),
			},
			{
				Key:   []byte("etcd_yaml_key/subkey"),
				Value: []byte("etcd_yaml_abc: xyz"),
			},
		},
		false: {
			{
				Key: []byte("etcd_yaml_key"),
				Value: []byte(`etcd_yaml_foo: bar
db:
  port: 5432`),
			},
		},
	},
	xenv.RemoteValuePlain: {
		true: {
			{
				Key:   []byte("etcd_plain_key"),
				Value: []byte("1000\n"),
			},
			{
				Key:   []byte("etcd_plain_key/subkey"),
				Value: []byte("xyz"),
			},
		},
		false: {
			{
				Key:   []byte("etcd_plain_key"),
				Value: []byte("1000\n"),
			},
		},
	},
}

var etcdKeys = map[string]string{
	xenv.RemoteValueJSON:  "etcd_json_key",
	xenv.RemoteValueYAML:  "etcd_yaml_key",
	xenv.RemoteValuePlain: "etcd_plain_key",
}

func TestEtcdSource(t *testing.T) {
	// Note: do not run this test with t.Parallel() as it can affect others by setting ENVs.

	t.Run("success - json single key", testEtcdSourceByFormatAndPrefix(xenv.RemoteValueJSON, false))
	t.Run("success - json prefix key", testEtcdSourceByFormatAndPrefix(xenv.RemoteValueJSON, true))
	t.Run("success - yaml single key", testEtcdSourceByFormatAndPrefix(xenv.RemoteValueYAML, false))
	t.Run("success - yaml prefix key", testEtcdSourceByFormatAndPrefix(xenv.RemoteValueYAML, true))
	t.Run("success - plain single key", testEtcdSourceByFormatAndPrefix(xenv.RemoteValuePlain, false))
	t.Run("success - plain prefix key", testEtcdSourceByFormatAndPrefix(xenv.RemoteValuePlain, true))
	t.Run("error - client init error", testEtcdSourceReturnsClientInitErr)
	t.Run("error - grpc call fails", testEtcdSourceReturnsResponseErr)
	t.Run("error - json value deserialization fails", testEtcdSourceReturnsErrFromJSONValueDeserialization)
	t.Run("error - yaml value deserialization fails", testEtcdSourceReturnsErrFromYAMLValueDeserialization)
	t.Run("success - with auth", testEtcdSourceWithAuth)
	t.Run("success - default etcd endpoints taken from env", testEtcdSourceWithEndpointsTakenFromEnv)
}

func testEtcdSourceByFormatAndPrefix(format string, withPrefix bool) func(t *testing.T) {
	return func(t *testing.T) {
		t.Parallel()

		// arrange
		key := etcdKeys[format]
		content := etcdResponseKvs[format][withPrefix]
		svr, addr := startEtcdKVMockServer(t, key, content, nil)
		ctx, cancelCtx := context.WithTimeout(context.Background(), 15*time.Second)
		defer func() {
			cancelCtx()
			svr.Stop()
		}()
		opts := []xenv.EtcdSourceOption{
			xenv.EtcdSourceWithEndpoints([]string{addr}),
			xenv.EtcdSourceWithContext(ctx),
			xenv.EtcdSourceWithValueFormat(format),
		}
		if withPrefix {
			opts = append(opts, xenv.EtcdSourceWithPrefix())
		}
		subject := xenv.NewEtcdSource(key, opts...)

		// act
		environ, err := subject.Load()

		// assert
		assertNil(t, err)
		assertEqual(t, getEtcdExpectedEnvironByFormatAndPrefix(format, withPrefix), environ)
	}
}

func testEtcdSourceReturnsClientInitErr(t *testing.T) {
	t.Parallel()

	// arrange
	subject := xenv.NewEtcdSource(
		"some-key",
		xenv.EtcdSourceWithEndpoints([]string{}),
	)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, environ)
	assertTrue(t, errors.Is(err, clientv3.ErrNoAvailableEndpoints))
}

func testEtcdSourceReturnsResponseErr(t *testing.T) {
	t.Parallel()

	// arrange
	expectedErr := errors.New("etcd intentionally triggered call error")
	key := "some-etcd-key"
	svr, addr := startEtcdKVMockServer(t, key, nil, expectedErr)
	defer svr.Stop()
	subject := xenv.NewEtcdSource(key, xenv.EtcdSourceWithEndpoints([]string{addr}))

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, environ)
	if assertNotNil(t, err) {
		assertTrue(t, strings.Contains(err.Error(), expectedErr.Error()))
	}
}

func testEtcdSourceReturnsErrFromJSONValueDeserialization(t *testing.T) {
	t.Parallel()

	// arrange
	key := "etcd_json_key_"
	returnedKvs := []*mvccpb.KeyValue{
		{
			Key:   []byte("etcd_json_key_1"),
			Value: []byte(`{"etcd_json_foo": "bar"}`),
		},
		{
			Key:   []byte("etcd_json_key_2"),
			Value: []byte(`{ broken json`),
		},
	}
	svr, addr := startEtcdKVMockServer(t, key, returnedKvs, nil)
	defer svr.Stop()
	subject := xenv.NewEtcdSource(
		key,
		xenv.EtcdSourceWithEndpoints([]string{addr}),
		xenv.EtcdSourceWithPrefix(),
		xenv.EtcdSourceWithValueFormat(xenv.RemoteValueJSON),
	)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, environ)
	var jsonErr *json.SyntaxError
	assertTrue(t, errors.As(err, &jsonErr))
}

func testEtcdSourceReturnsErrFromYAMLValueDeserialization(t *testing.T) {
	t.Parallel()

	// arrange
	key := "etcd_yaml_key_"
	returnedKvs := []*mvccpb.KeyValue{
		{
			Key:   []byte("etcd_yaml_key_1"),
			Value: []byte("etcd_yaml_foo: bar"),
		},
		{
			Key:   []byte("etcd_yaml_key_2"),
			Value: []byte("just a plain scalar"),
		},
	}
	svr, addr := startEtcdKVMockServer(t, key, returnedKvs, nil)
	defer svr.Stop()
	subject := xenv.NewEtcdSource(
		key,
		xenv.EtcdSourceWithEndpoints([]string{addr}),
		xenv.EtcdSourceWithPrefix(),
		xenv.EtcdSourceWithValueFormat(xenv.RemoteValueYAML),
	)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, environ)
	var yamlErr *yaml.TypeError
	assertTrue(t, errors.As(err, &yamlErr))
}

func testEtcdSourceWithAuth(t *testing.T) {
	t.Parallel()

	// arrange
	authenticateCallsCnt := 0
	authUsr, authPwd := "john-doe", "some-secret-pwd"
	authSvr := etcdAuthServer{
		authenticateCallback: func(_ context.Context, req *pb.AuthenticateRequest) (*pb.AuthenticateResponse, error) {
			authenticateCallsCnt++
			assertEqual(t, authUsr, req.Name)
			assertEqual(t, authPwd, req.Password)

			return &pb.AuthenticateResponse{
				Token: "some-token",
			}, nil
		},
	}

	format := xenv.RemoteValuePlain
	withPrefix := false
	key := etcdKeys[format]
	content := etcdResponseKvs[format][withPrefix]
	kvSvr := etcdKVServer{
		rangeCallback: func(_ context.Context, req *pb.RangeRequest) (*pb.RangeResponse, error) {
			assertEqual(t, key, string(req.Key))

			return &pb.RangeResponse{
				Kvs:   content,
				More:  false,
				Count: int64(len(content)),
			}, nil
		},
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	svr := grpc.NewServer()
	pb.RegisterKVServer(svr, &kvSvr)
	pb.RegisterAuthServer(svr, &authSvr)
	go func(svr *grpc.Server, l net.Listener) {
		_ = svr.Serve(l)
	}(svr, ln)
	defer svr.Stop()

	subject := xenv.NewEtcdSource(
		key,
		xenv.EtcdSourceWithEndpoints([]string{ln.Addr().String()}),
		xenv.EtcdSourceWithAuth(authUsr, authPwd),
	)

	// act
	environ, errLoad := subject.Load()

	// assert
	assertNil(t, errLoad)
	assertEqual(t, getEtcdExpectedEnvironByFormatAndPrefix(format, withPrefix), environ)
	assertEqual(t, 1, authenticateCallsCnt)
}

func testEtcdSourceWithEndpointsTakenFromEnv(t *testing.T) {
	// arrange
	format := xenv.RemoteValuePlain
	withPrefix := false
	content := etcdResponseKvs[format][withPrefix]
	key := etcdKeys[format]

	svr, addr := startEtcdKVMockServer(t, key, content, nil)
	defer svr.Stop()

	t.Setenv("ETCD_ENDPOINTS", addr)

	subject := xenv.NewEtcdSource(key)

	// act
	environ, err := subject.Load()

	// assert
	assertNil(t, err)
	assertEqual(t, getEtcdExpectedEnvironByFormatAndPrefix(format, withPrefix), environ)
}

// getEtcdExpectedEnvironByFormatAndPrefix returns expected raw mappings
// (correlated with etcdResponseKvs variable).
func getEtcdExpectedEnvironByFormatAndPrefix(format string, withPrefix bool) map[string]string {
	var expectedEnviron map[string]string
	switch format {
	case xenv.RemoteValueJSON:
		expectedEnviron = map[string]string{
			"etcd_json_foo": "bar",
			"db.port":       "5432",
		}
		if withPrefix {
			expectedEnviron["etcd_json_abc"] = "xyz"
		}
	case xenv.RemoteValueYAML:
		expectedEnviron = map[string]string{
			"etcd_yaml_foo": "bar",
			"db.port":       "5432",
		}
		if withPrefix {
			expectedEnviron["etcd_yaml_abc"] = "xyz"
		}
	case xenv.RemoteValuePlain:
		expectedEnviron = map[string]string{
			"etcd_plain_key": "1000",
		}
		if withPrefix {
			expectedEnviron["etcd_plain_key/subkey"] = "xyz"
		}
	}

	return expectedEnviron
}
