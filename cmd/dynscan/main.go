package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/raywall/dynamo-read-toolkit/dyndb"
	"github.com/raywall/dynamo-read-toolkit/pkg/config"
	"github.com/raywall/dynamo-read-toolkit/pkg/logger"
	"github.com/raywall/dynamo-read-toolkit/pkg/metrics"
	"github.com/raywall/dynamo-read-toolkit/pkg/observability"
)

// record é o tipo genérico da linha de comando: itens saem como NDJSON sem
// schema fixo.
type record = map[string]any

func main() {
	scanCmd := flag.NewFlagSet("scan", flag.ExitOnError)
	scanConfig := scanCmd.String("config", "", "Caminho do arquivo YAML de configuração")
	scanAll := scanCmd.Bool("all", false, "Percorre todas as páginas (padrão: uma página)")
	scanToken := scanCmd.String("token", "", "Token de retomada de uma execução anterior")
	scanLimit := scanCmd.Int("limit", 0, "Teto de registros da execução (0 = sem teto)")

	countCmd := flag.NewFlagSet("count", flag.ExitOnError)
	countConfig := countCmd.String("config", "", "Caminho do arquivo YAML de configuração")

	if len(os.Args) < 2 {
		fmt.Println("Comandos esperados: scan, count")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "scan":
		scanCmd.Parse(os.Args[2:])
		requireConfig(*scanConfig)
		runScan(*scanConfig, *scanAll, *scanToken, *scanLimit)
	case "count":
		countCmd.Parse(os.Args[2:])
		requireConfig(*countConfig)
		runCount(*countConfig)
	default:
		fmt.Println("Comando desconhecido")
		os.Exit(1)
	}
}

func requireConfig(path string) {
	if path == "" {
		fmt.Println("Erro: flag -config é obrigatória")
		os.Exit(1)
	}
}

// newStore monta o Store a partir do YAML: client AWS, logger, métricas e
// política de retry.
func newStore(ctx context.Context, cfg *config.ToolkitConfig) (dyndb.Store[record], *metrics.Recorder, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Table.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Table.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao carregar credenciais AWS: %w", err)
	}

	provider, err := observability.SetupMetrics(cfg.Metrics)
	if err != nil {
		return nil, nil, err
	}
	recorder := metrics.NewRecorder(provider)

	store := dyndb.New(dynamodb.NewFromConfig(awsCfg), dyndb.TableConfig[record]{
		TableName: cfg.Table.Name,
		HashKey:   cfg.Table.HashKey,
		SortKey:   cfg.Table.SortKey,
	},
		dyndb.WithRetryPolicy(retryPolicyFrom(cfg.Reader)),
		dyndb.WithLogger(logger.Configure(cfg.Logging)),
		dyndb.WithMetrics(recorder),
	)
	return store, recorder, nil
}

// retryPolicyFrom traduz os knobs do YAML para a política de retry do fetcher.
func retryPolicyFrom(rc config.ReaderConf) dyndb.RetryPolicy {
	policy := dyndb.DefaultRetryPolicy
	if rc.MaxAttempts > 0 {
		policy.MaxAttempts = rc.MaxAttempts
	}
	policy.InitialInterval = rc.GetInitialBackoff()
	policy.MaxInterval = rc.GetMaxBackoff()
	if rc.Multiplier > 1 {
		policy.Multiplier = rc.Multiplier
	}
	return policy
}

// writeNDJSON emite um item JSON por linha, devolvendo quantos foram escritos
// e a primeira falha de escrita (pipe quebrado inclusive).
func writeNDJSON(w io.Writer, items []record) (int, error) {
	enc := json.NewEncoder(w)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// scanBuilder monta o builder de Scan com os knobs do YAML aplicados.
func scanBuilder(store dyndb.Store[record], cfg *config.ToolkitConfig, token string) *dyndb.QueryBuilder[record] {
	builder := store.Scan()
	if cfg.Table.Index != "" {
		builder = builder.Index(cfg.Table.Index)
	}
	if cfg.Reader.PageSize > 0 {
		builder = builder.Limit(cfg.Reader.PageSize)
	}
	if cfg.Reader.Consistent {
		builder = builder.Consistent(true)
	}
	if token != "" {
		builder = builder.LastKey(token)
	}
	return builder
}

func runScan(path string, all bool, token string, limit int) {
	ctx := context.Background()

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("❌ Configuração inválida:\n%v\n", err)
		os.Exit(1)
	}

	store, recorder, err := newStore(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	if limit == 0 {
		limit = cfg.Reader.RecordLimit
	}

	out := json.NewEncoder(os.Stdout)

	if all && cfg.Reader.Segments > 1 {
		plan, err := scanBuilder(store, cfg, "").Plan()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		items, failures, err := dyndb.ScanAllSegments(ctx, store, plan, cfg.Reader.Segments)
		if err != nil {
			fmt.Printf("❌ Scan paralelo falhou: %v\n", err)
			os.Exit(1)
		}
		if _, err := writeNDJSON(os.Stdout, items); err != nil {
			fmt.Printf("❌ Escrita da saída falhou: %v\n", err)
			os.Exit(1)
		}
		printSummary(recorder, len(items), len(failures), "")
		return
	}

	reader, err := scanBuilder(store, cfg, token).Reader()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if limit > 0 {
		reader.Limit(limit)
	}

	written := 0
	if all {
		err = reader.Recursive().Each(ctx, func(item record) error {
			written++
			return out.Encode(item)
		})
		if err != nil {
			fmt.Printf("❌ Leitura interrompida: %v\n", err)
			os.Exit(1)
		}
	} else {
		page, err := reader.NextPage(ctx)
		if err != nil {
			fmt.Printf("❌ Leitura falhou: %v\n", err)
			os.Exit(1)
		}
		written, err = writeNDJSON(os.Stdout, page.Items)
		if err != nil {
			fmt.Printf("❌ Escrita da saída falhou: %v\n", err)
			os.Exit(1)
		}
	}

	printSummary(recorder, written, len(reader.Failures()), reader.LastToken())
}

func runCount(path string) {
	ctx := context.Background()

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("❌ Configuração inválida:\n%v\n", err)
		os.Exit(1)
	}

	store, recorder, err := newStore(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	total, err := scanBuilder(store, cfg, "").Count(ctx)
	if err != nil {
		fmt.Printf("❌ Contagem falhou: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %d itens em %s\n", total, cfg.Table.Name)
	stats := recorder.Snapshot()
	fmt.Fprintf(os.Stderr, "páginas=%d retries=%d rcu=%.1f\n", stats.Pages, stats.Retries, stats.CapacityUnits)
}

func printSummary(recorder *metrics.Recorder, items, failures int, token string) {
	stats := recorder.Snapshot()
	fmt.Fprintf(os.Stderr, "itens=%d falhas=%d páginas=%d retries=%d rcu=%.1f\n",
		items, failures, stats.Pages, stats.Retries, stats.CapacityUnits)
	if token != "" {
		fmt.Fprintf(os.Stderr, "token=%s\n", token)
	}
}
