package packaging

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// PackagingService define o contrato que o Handler espera da camada de Serviço.
type PackagingService interface {
	CreatePackaging(ctx domain.Context, req domain.PackagingCreationRequest) (domain.PackagingDefinition, error)
	GetPackagingsByProduct(ctx domain.Context, productID string) ([]domain.PackagingDefinition, error)
	GetPackagingHierarchy(ctx domain.Context, productID string) ([]*domain.PackagingNode, error)
	ConvertToBaseUnits(ctx domain.Context, quantity decimal.Decimal, packagingTypeID string) (decimal.Decimal, error)
	CalculateConversionFactor(ctx domain.Context, fromPackagingID, toPackagingID string) (decimal.Decimal, error)
	DeactivatePackaging(ctx domain.Context, id string) error
}

// Handler agrupa todos os métodos de Handler do catálogo de embalagens.
type Handler struct {
	Service PackagingService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PackagingService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// PackagingsHandler lida com a coleção /v1/packagings:
// POST cria uma definição; GET lista o catálogo de um produto (?product_id=).
func (h *Handler) PackagingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createPackaging(w, r)
	case http.MethodGet:
		h.listPackagings(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createPackaging(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.PackagingCreationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreatePackaging(ctx, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

func (h *Handler) listPackagings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro product_id é obrigatório."), http.StatusOK)
		return
	}

	defs, err := h.Service.GetPackagingsByProduct(ctx, productID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if defs == nil {
		defs = []domain.PackagingDefinition{}
	}

	h.handleServiceResponse(w, r, defs, nil, http.StatusOK)
}

// HierarchyHandler lida com GET /v1/packagings/hierarchy?product_id={id}.
func (h *Handler) HierarchyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro product_id é obrigatório."), http.StatusOK)
		return
	}

	tree, err := h.Service.GetPackagingHierarchy(ctx, productID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if tree == nil {
		tree = []*domain.PackagingNode{}
	}

	h.handleServiceResponse(w, r, tree, nil, http.StatusOK)
}

// ConvertHandler lida com GET /v1/packagings/convert?quantity={q}&packaging_id={id}.
func (h *Handler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	packagingID := r.URL.Query().Get("packaging_id")
	if packagingID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro packaging_id é obrigatório."), http.StatusOK)
		return
	}

	quantity, err := decimal.NewFromString(r.URL.Query().Get("quantity"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInvalidQuantityError("o parâmetro quantity deve ser um número decimal válido."), http.StatusOK)
		return
	}

	baseUnits, err := h.Service.ConvertToBaseUnits(ctx, quantity, packagingID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, domain.ConversionResult{
		PackagingTypeID: packagingID,
		Quantity:        quantity,
		BaseUnits:       baseUnits,
	}, nil, http.StatusOK)
}

// FactorHandler lida com GET /v1/packagings/factor?from={id}&to={id}.
func (h *Handler) FactorHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	fromID := r.URL.Query().Get("from")
	toID := r.URL.Query().Get("to")
	if fromID == "" || toID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Os parâmetros from e to são obrigatórios."), http.StatusOK)
		return
	}

	factor, err := h.Service.CalculateConversionFactor(ctx, fromID, toID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, domain.ConversionFactorResult{
		FromPackagingID: fromID,
		ToPackagingID:   toID,
		Factor:          factor,
	}, nil, http.StatusOK)
}

// DeactivateHandler lida com DELETE /v1/packagings/{id} (soft delete).
func (h *Handler) DeactivateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	// Extrai o ID do último segmento da URL: /v1/packagings/{id}
	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 3 {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	packagingID := segments[2]

	if err := h.Service.DeactivatePackaging(ctx, packagingID); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		return
	}

	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}
