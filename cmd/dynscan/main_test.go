package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raywall/dynamo-read-toolkit/dyndb"
	"github.com/raywall/dynamo-read-toolkit/pkg/config"
)

func TestRetryPolicyFrom(t *testing.T) {
	t.Run("config vazia usa os padrões", func(t *testing.T) {
		policy := retryPolicyFrom(config.ReaderConf{})
		if policy.MaxAttempts != dyndb.DefaultRetryPolicy.MaxAttempts {
			t.Errorf("MaxAttempts = %d, esperado %d", policy.MaxAttempts, dyndb.DefaultRetryPolicy.MaxAttempts)
		}
		if policy.InitialInterval != 50*time.Millisecond {
			t.Errorf("InitialInterval = %v, esperado 50ms", policy.InitialInterval)
		}
	})

	t.Run("knobs do YAML prevalecem", func(t *testing.T) {
		policy := retryPolicyFrom(config.ReaderConf{
			MaxAttempts:    8,
			InitialBackoff: "100ms",
			MaxBackoff:     "5s",
			Multiplier:     1.5,
		})
		if policy.MaxAttempts != 8 {
			t.Errorf("MaxAttempts = %d, esperado 8", policy.MaxAttempts)
		}
		if policy.InitialInterval != 100*time.Millisecond {
			t.Errorf("InitialInterval = %v, esperado 100ms", policy.InitialInterval)
		}
		if policy.MaxInterval != 5*time.Second {
			t.Errorf("MaxInterval = %v, esperado 5s", policy.MaxInterval)
		}
		if policy.Multiplier != 1.5 {
			t.Errorf("Multiplier = %v, esperado 1.5", policy.Multiplier)
		}
	})
}

func TestScanBuilder(t *testing.T) {
	store := &dyndb.MockStore[record]{
		Config: dyndb.TableConfig[record]{TableName: "cli-table", HashKey: "id"},
		Client: &dyndb.MockDynamoClient{},
	}

	cfg := &config.ToolkitConfig{
		Table:  config.TableConf{Name: "cli-table", HashKey: "id"},
		Reader: config.ReaderConf{PageSize: 50},
	}

	plan, err := scanBuilder(store, cfg, "").Plan()
	if err != nil {
		t.Fatalf("Plan() falhou: %v", err)
	}
	if !plan.IsScan() {
		t.Error("esperado um plano de Scan")
	}
	if plan.PageSize() == nil || *plan.PageSize() != 50 {
		t.Errorf("PageSize = %v, esperado 50", plan.PageSize())
	}
}

// brokenWriter falha depois de n escritas bem-sucedidas
type brokenWriter struct {
	n int
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("broken pipe")
	}
	w.n--
	return len(p), nil
}

func TestWriteNDJSON(t *testing.T) {
	items := []record{
		{"id": "1"},
		{"id": "2"},
		{"id": "3"},
	}

	t.Run("uma linha por item", func(t *testing.T) {
		var buf bytes.Buffer
		written, err := writeNDJSON(&buf, items)
		if err != nil {
			t.Fatalf("writeNDJSON falhou: %v", err)
		}
		if written != 3 {
			t.Errorf("written = %d, esperado 3", written)
		}
		if lines := strings.Count(buf.String(), "\n"); lines != 3 {
			t.Errorf("linhas = %d, esperado 3", lines)
		}
	})

	t.Run("falha de escrita interrompe e propaga", func(t *testing.T) {
		written, err := writeNDJSON(&brokenWriter{n: 1}, items)
		if err == nil {
			t.Fatal("esperado erro de escrita")
		}
		if written != 1 {
			t.Errorf("written = %d, esperado 1", written)
		}
	})
}

func TestScanBuilder_InvalidToken(t *testing.T) {
	store := &dyndb.MockStore[record]{
		Config: dyndb.TableConfig[record]{TableName: "cli-table", HashKey: "id"},
		Client: &dyndb.MockDynamoClient{},
	}
	cfg := &config.ToolkitConfig{Table: config.TableConf{Name: "cli-table"}}

	if _, err := scanBuilder(store, cfg, "***broken***").Plan(); err == nil {
		t.Error("token inválido deveria rejeitar o plano")
	}
}
