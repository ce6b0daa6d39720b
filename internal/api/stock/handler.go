package stock

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	GetStockByPackaging(ctx domain.Context, productID string) ([]domain.StockByPackaging, error)
	GetStockConsolidated(ctx domain.Context, productID string) (domain.ConsolidatedStock, error)
	AdjustStock(ctx domain.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
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

// StockByPackagingHandler lida com GET /v1/stock?product_id={id}: o estoque
// bruto por nível de embalagem, sem conversão.
func (h *Handler) StockByPackagingHandler(w http.ResponseWriter, r *http.Request) {
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

	stock, err := h.Service.GetStockByPackaging(ctx, productID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if stock == nil {
		stock = []domain.StockByPackaging{}
	}

	h.handleServiceResponse(w, r, stock, nil, http.StatusOK)
}

// ConsolidatedStockHandler lida com GET /v1/stock/consolidated?product_id={id}:
// o total do produto em unidades base.
func (h *Handler) ConsolidatedStockHandler(w http.ResponseWriter, r *http.Request) {
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

	consolidated, err := h.Service.GetStockConsolidated(ctx, productID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, consolidated, nil, http.StatusOK)
}

// AdjustStockHandler lida com a requisição POST /v1/stock/adjust.
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var adjustmentRequest domain.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&adjustmentRequest); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	record, err := h.Service.AdjustStock(ctx, adjustmentRequest)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, record, nil, http.StatusOK) // 200 OK para ajuste bem sucedido
}
