package headers

import (
	"net/http"
	"testing"
)

func TestBuildForwardHeadersDropsHopByHop(t *testing.T) {
	in := http.Header{}
	in.Set("Connection", "keep-alive")
	in.Set("Keep-Alive", "timeout=5")
	in.Set("Te", "trailers")
	in.Set("Content-Type", "application/json")

	out := BuildForwardHeaders(in, ForwardOptions{})

	for _, name := range []string{"Connection", "Keep-Alive", "Te"} {
		if out.Get(name) != "" {
			t.Errorf("hop-by-hop header %q leaked through", name)
		}
	}
	if out.Get("Content-Type") != "application/json" {
		t.Error("expected Content-Type to be forwarded")
	}
}

func TestBuildForwardHeadersDropsConnectionListedHeaders(t *testing.T) {
	in := http.Header{}
	in.Set("Connection", "x-custom-trace")
	in.Set("X-Custom-Trace", "abc")
	in.Set("X-Other", "kept")

	out := BuildForwardHeaders(in, ForwardOptions{})

	if out.Get("X-Custom-Trace") != "" {
		t.Error("expected header named in Connection to be dropped")
	}
	if out.Get("X-Other") != "kept" {
		t.Error("expected unrelated header to survive")
	}
}

func TestBuildForwardHeadersDropsForwardingAndHost(t *testing.T) {
	in := http.Header{}
	in.Set("X-Forwarded-For", "1.2.3.4")
	in.Set("X-Forwarded-Host", "evil.example")
	in.Set("X-Real-Ip", "1.2.3.4")
	in.Set("Forwarded", "for=1.2.3.4")
	in.Set("Host", "client-supplied-host")

	out := BuildForwardHeaders(in, ForwardOptions{})

	for _, name := range []string{"X-Forwarded-For", "X-Forwarded-Host", "X-Real-Ip", "Forwarded", "Host"} {
		if out.Get(name) != "" {
			t.Errorf("identity-spoofing header %q leaked through", name)
		}
	}
}

func TestBuildForwardHeadersForcesIdentityEncoding(t *testing.T) {
	in := http.Header{}
	in.Set("Accept-Encoding", "gzip, br")

	out := BuildForwardHeaders(in, ForwardOptions{})
	if out.Get("Accept-Encoding") != "identity" {
		t.Errorf("Accept-Encoding = %q, want identity", out.Get("Accept-Encoding"))
	}
}

// Testable property 7 (header policy), upstream-B half.
func TestBuildForwardHeadersZaiRewritesAuth(t *testing.T) {
	in := http.Header{}
	in.Set("Authorization", "Bearer client-oauth-token")

	out := BuildForwardHeaders(in, ForwardOptions{ToZai: true, APIKey: "zai-secret"})

	if out.Get("Authorization") != "" {
		t.Error("Authorization must be removed for upstream B")
	}
	if out.Get("X-Api-Key") != "zai-secret" {
		t.Errorf("X-Api-Key = %q, want zai-secret", out.Get("X-Api-Key"))
	}
}

func TestBuildForwardHeadersZaiWithNoAPIKeySetsNoHeader(t *testing.T) {
	in := http.Header{}
	in.Set("Authorization", "Bearer x")

	out := BuildForwardHeaders(in, ForwardOptions{ToZai: true, APIKey: ""})

	if out.Get("Authorization") != "" {
		t.Error("Authorization must be removed regardless of apiKey presence")
	}
	if out.Get("X-Api-Key") != "" {
		t.Error("X-Api-Key must not be set when no apiKey is configured")
	}
}

func TestBuildForwardHeadersAnthropicForwardsAuthorizationByteExactly(t *testing.T) {
	in := http.Header{}
	in.Set("Authorization", "Bearer sk-ant-exact")

	out := BuildForwardHeaders(in, ForwardOptions{ToZai: false})

	if out.Get("Authorization") != "Bearer sk-ant-exact" {
		t.Errorf("Authorization = %q, want forwarded byte-exactly", out.Get("Authorization"))
	}
}

func TestBuildForwardHeadersRecomputesContentLengthWhenBodyRewritten(t *testing.T) {
	in := http.Header{}
	in.Set("Content-Length", "4")

	out := BuildForwardHeaders(in, ForwardOptions{BodyRewritten: true, BodyLength: 123})
	if out.Get("Content-Length") != "123" {
		t.Errorf("Content-Length = %q, want 123", out.Get("Content-Length"))
	}
}

func TestBuildForwardHeadersLeavesContentLengthAloneWhenNotRewritten(t *testing.T) {
	in := http.Header{}
	in.Set("Content-Length", "4")

	out := BuildForwardHeaders(in, ForwardOptions{BodyRewritten: false})
	if out.Get("Content-Length") != "4" {
		t.Errorf("Content-Length = %q, want unchanged 4", out.Get("Content-Length"))
	}
}

func TestBuildResponseHeadersDropsHopByHopAndConnectionListed(t *testing.T) {
	in := http.Header{}
	in.Set("Connection", "x-upstream-debug")
	in.Set("X-Upstream-Debug", "secret")
	in.Set("Transfer-Encoding", "chunked")
	in.Set("Content-Type", "application/json")

	out := BuildResponseHeaders(in, false, 0)

	if out.Get("X-Upstream-Debug") != "" {
		t.Error("expected connection-listed header dropped")
	}
	if out.Get("Transfer-Encoding") != "" {
		t.Error("expected hop-by-hop header dropped")
	}
	if out.Get("Content-Type") != "application/json" {
		t.Error("expected Content-Type preserved")
	}
}

func TestBuildResponseHeadersBufferedRewriteDropsEncodingSetsLength(t *testing.T) {
	in := http.Header{}
	in.Set("Content-Encoding", "gzip")
	in.Set("Content-Length", "999")

	out := BuildResponseHeaders(in, true, 42)

	if out.Get("Content-Encoding") != "" {
		t.Error("expected Content-Encoding dropped on buffered rewrite")
	}
	if out.Get("Content-Length") != "42" {
		t.Errorf("Content-Length = %q, want 42", out.Get("Content-Length"))
	}
}
