package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ToolkitConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ToolkitConfig) error {
	// 1. Scan paralelo: um índice não pode ser lido por segmentos
	if cfg.Reader.Segments > 1 && cfg.Table.Index != "" {
		return fmt.Errorf("leitura inválida: scan por segmentos não é suportado em índices (index '%s')", cfg.Table.Index)
	}

	// 2. Consistência forte não existe em GSI
	if cfg.Reader.Consistent && cfg.Table.Index != "" {
		return fmt.Errorf("leitura inválida: consistent read não é suportada em índices secundários globais")
	}

	// 3. Intervalos de backoff precisam ser parseáveis quando informados
	if cfg.Reader.InitialBackoff != "" {
		if _, err := time.ParseDuration(cfg.Reader.InitialBackoff); err != nil {
			return fmt.Errorf("initial_backoff inválido: '%s'", cfg.Reader.InitialBackoff)
		}
	}
	if cfg.Reader.MaxBackoff != "" {
		if _, err := time.ParseDuration(cfg.Reader.MaxBackoff); err != nil {
			return fmt.Errorf("max_backoff inválido: '%s'", cfg.Reader.MaxBackoff)
		}
	}
	if cfg.Reader.GetMaxBackoff() < cfg.Reader.GetInitialBackoff() {
		return fmt.Errorf("max_backoff menor que initial_backoff")
	}

	return nil
}
