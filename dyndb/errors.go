// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package dyndb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrNotFound – erro padrão quando o item não existe
	ErrNotFound = errors.New("dyndb: item not found")

	// ErrCapacityExceeded indica que o throttling do DynamoDB persistiu mesmo
	// após todas as tentativas da política de retry.
	ErrCapacityExceeded = errors.New("dyndb: provisioned capacity exceeded")

	// ErrInvalidCursor indica que o token de paginação foi rejeitado pela
	// tabela. Não há retry: repetir a mesma chamada com o mesmo cursor
	// nunca vai funcionar.
	ErrInvalidCursor = errors.New("dyndb: invalid pagination cursor")

	// ErrPlanRejected indica que a consulta é malformada ou não suportada
	// pela tabela/índice. Fatal, sem retry.
	ErrPlanRejected = errors.New("dyndb: query plan rejected")

	// ErrReaderFailed é usado como prefixo do erro terminal de um Reader.
	ErrReaderFailed = errors.New("dyndb: reader in failed state")
)

// CapacityError é o erro terminal devolvido quando o throttling da tabela
// esgota a política de retry. Attempts registra quantas chamadas foram feitas.
type CapacityError struct {
	Attempts int
	Err      error
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("dyndb: capacity exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *CapacityError) Unwrap() error { return e.Err }

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// TransientError é o erro terminal para falhas de rede/timeout que
// persistiram após todas as tentativas.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("dyndb: transient fetch error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// DecodeFailure registra um item bruto que falhou na validação do schema.
// No modo Lenient a falha é anexada à página sem bloquear os itens vizinhos;
// no modo Strict ela aborta a iteração.
type DecodeFailure struct {
	Raw RawItem
	Err error
}

func (f DecodeFailure) Error() string {
	return fmt.Sprintf("dyndb: decode failure: %v", f.Err)
}

func (f DecodeFailure) Unwrap() error { return f.Err }

type errClass int

const (
	classFatal errClass = iota
	classCapacity
	classTransient
	classInvalidCursor
)

// classify mapeia os erros do SDK para a taxonomia de retry.
func classify(err error) errClass {
	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return classCapacity
	}
	var limit *types.LimitExceededException
	if errors.As(err, &limit) {
		return classCapacity
	}
	var requestLimit *types.RequestLimitExceeded
	if errors.As(err, &requestLimit) {
		return classCapacity
	}
	var internal *types.InternalServerError
	if errors.As(err, &internal) {
		return classTransient
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ProvisionedThroughputExceededException", "RequestLimitExceeded":
			return classCapacity
		case "ValidationException":
			// O SDK não tem um tipo dedicado para cursor inválido; a tabela
			// reporta como ValidationException citando a ExclusiveStartKey.
			if strings.Contains(apiErr.ErrorMessage(), "ExclusiveStartKey") {
				return classInvalidCursor
			}
			return classFatal
		case "ServiceUnavailable", "InternalServerError", "RequestTimeout":
			return classTransient
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return classTransient
		}
		return classFatal
	}

	// Falhas fora do protocolo (conexão, DNS, timeout de transporte).
	return classTransient
}
