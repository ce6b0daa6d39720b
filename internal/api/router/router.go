package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/Joaovenera/wms-sub004/config"
	"github.com/Joaovenera/wms-sub004/internal/api/packaging"
	"github.com/Joaovenera/wms-sub004/internal/api/picking"
	"github.com/Joaovenera/wms-sub004/internal/api/product"
	"github.com/Joaovenera/wms-sub004/internal/api/stock"
	"github.com/Joaovenera/wms-sub004/internal/api/user"
	"github.com/Joaovenera/wms-sub004/internal/domain"
	"github.com/Joaovenera/wms-sub004/internal/pkg/cache"
	"github.com/Joaovenera/wms-sub004/internal/pkg/middleware"
	"github.com/Joaovenera/wms-sub004/internal/pkg/token"
)

// Handlers agrupa todos os Handlers já inicializados que o roteador expõe.
type Handlers struct {
	Product   *product.Handler
	User      *user.Handler
	Packaging *packaging.Handler
	Stock     *stock.Handler
	Picking   *picking.Handler
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências, o serviço
// de tokens para o middleware de autenticação e o cliente de cache para o
// rate limiting.
func NewRouter(h Handlers, tokenSvc token.TokenService, cacheClient cache.Client, cfg *config.Config) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// Middlewares reutilizáveis
	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)
	rateLimit := middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	// --- 1. Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Usuários (rotas públicas, com rate limit para conter brute force) ---
	mux.Handle("/v1/users/register", rateLimit(http.HandlerFunc(h.User.RegisterUserHandler)))
	mux.Handle("/v1/users/login", rateLimit(http.HandlerFunc(h.User.LoginUserHandler)))

	// --- 3. Produtos ---
	// GET é público; POST exige autenticação.
	mux.HandleFunc("/v1/products", methodSplit(map[string]http.HandlerFunc{
		http.MethodGet:  h.Product.ProductsHandler,
		http.MethodPost: auth(h.Product.ProductsHandler),
	}))
	mux.HandleFunc("/v1/products/", h.Product.GetProductByIDHandler)

	// --- 4. Catálogo de Embalagens ---
	// Leituras (GET) são públicas; mutações do catálogo (POST, DELETE) são
	// restritas a administradores.
	mux.HandleFunc("/v1/packagings", methodSplit(map[string]http.HandlerFunc{
		http.MethodGet:  h.Packaging.PackagingsHandler,
		http.MethodPost: auth(adminOnly(h.Packaging.PackagingsHandler)),
	}))
	mux.HandleFunc("/v1/packagings/hierarchy", h.Packaging.HierarchyHandler)
	mux.HandleFunc("/v1/packagings/convert", h.Packaging.ConvertHandler)
	mux.HandleFunc("/v1/packagings/factor", h.Packaging.FactorHandler)
	mux.HandleFunc("/v1/packagings/", auth(adminOnly(h.Packaging.DeactivateHandler)))

	// --- 5. Estoque ---
	// O ajuste é a única mutação de estoque e exige usuário autenticado.
	mux.HandleFunc("/v1/stock", h.Stock.StockByPackagingHandler)
	mux.HandleFunc("/v1/stock/consolidated", h.Stock.ConsolidatedStockHandler)
	mux.HandleFunc("/v1/stock/adjust", auth(h.Stock.AdjustStockHandler))

	// --- 6. Picking ---
	mux.HandleFunc("/v1/picking/optimize", auth(h.Picking.OptimizeHandler))

	// --- 7. Documentação (Swagger UI) ---
	mux.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "api/swagger.json")
	})
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// methodSplit despacha para um handler diferente por método HTTP, permitindo
// políticas de acesso distintas na mesma rota (ex: GET público, POST admin).
func methodSplit(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next, ok := handlers[r.Method]
		if !ok {
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
