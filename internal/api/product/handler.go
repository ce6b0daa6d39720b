package product

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
	"github.com/Joaovenera/wms-sub004/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
// Usamos a assinatura com o tipo abstrato domain.Context para manter a pureza do domínio.
type ProductService interface {
	CreateProduct(ctx domain.Context, p domain.Product) (domain.Product, error)
	GetProductByID(ctx domain.Context, id string) (domain.Product, error)
	ListProducts(ctx domain.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
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

		// Log de Sucesso (Registro da operação)
		h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

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
		// Erros de cliente (4xx) são logados como debug
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

// ProductsHandler lida com a coleção /v1/products:
// POST cria um produto; GET lista produtos com filtro e paginação.
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createProduct(w, r)
	case http.MethodGet:
		h.listProducts(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	// O contexto nativo (context.Context) será passado como domain.Context
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if ok {
		// Logamos o ID do usuário que está criando o produto
		h.Logger.Info("Tentativa de criação de produto por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	} else {
		h.Logger.Warn("Tentativa de criação de produto sem claims de usuário no contexto.", nil)
	}

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	newProduct, err := h.Service.CreateProduct(ctx, product)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, newProduct, nil, http.StatusCreated)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := domain.ProductFilter{
		Name:       query.Get("name"),
		SKU:        query.Get("sku"),
		ActiveOnly: query.Get("active_only") == "true",
		Limit:      50,
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 1 {
		filter.Page = page
	}

	products, err := h.Service.ListProducts(ctx, filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	// Extrai o ID do último segmento da URL: ["v1", "products", "3c95b8c8..."]
	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 3 {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}

	productID := segments[2]
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto é obrigatório."), http.StatusOK)
		return
	}

	product, err := h.Service.GetProductByID(ctx, productID)
	if err != nil {
		// O handleServiceResponse fará o mapeamento de NotFoundError (404) ou InternalError (500)
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, product, nil, http.StatusOK)
}
