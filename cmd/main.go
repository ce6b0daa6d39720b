package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"github.com/Joaovenera/wms-sub004/config"
	"github.com/Joaovenera/wms-sub004/internal/pkg/cache"
	"github.com/Joaovenera/wms-sub004/internal/pkg/database"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
	"github.com/Joaovenera/wms-sub004/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"github.com/Joaovenera/wms-sub004/internal/api/packaging"
	"github.com/Joaovenera/wms-sub004/internal/api/picking"
	"github.com/Joaovenera/wms-sub004/internal/api/product"
	"github.com/Joaovenera/wms-sub004/internal/api/router"
	"github.com/Joaovenera/wms-sub004/internal/api/stock"
	"github.com/Joaovenera/wms-sub004/internal/api/user"
	"github.com/Joaovenera/wms-sub004/internal/repository/packagingrepo"
	"github.com/Joaovenera/wms-sub004/internal/repository/productrepo"
	"github.com/Joaovenera/wms-sub004/internal/repository/stockrepo"
	"github.com/Joaovenera/wms-sub004/internal/repository/userrepo"
	"github.com/Joaovenera/wms-sub004/internal/service/packagingservice"
	"github.com/Joaovenera/wms-sub004/internal/service/pickingservice"
	"github.com/Joaovenera/wms-sub004/internal/service/productservice"
	"github.com/Joaovenera/wms-sub004/internal/service/stockservice"
	"github.com/Joaovenera/wms-sub004/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço WMS-Sub004...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado, avisamos mas continuamos,
		// pois as variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	packagingRepo := packagingrepo.NewPackagingRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	stockRepo := stockrepo.NewStockRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	productSvc := productservice.NewService(productRepo, log)
	packagingSvc := packagingservice.NewService(packagingRepo, log)
	stockSvc := stockservice.NewService(stockRepo, packagingSvc, log)
	pickingSvc := pickingservice.NewService(packagingSvc, stockSvc, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	handlers := router.Handlers{
		Product:   product.NewHandler(productSvc, log),
		User:      user.NewHandler(userSvc, log),
		Packaging: packaging.NewHandler(packagingSvc, log),
		Stock:     stock.NewHandler(stockSvc, log),
		Picking:   picking.NewHandler(pickingSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	// O roteador recebe os Handlers e aplica os middlewares de autenticação,
	// autorização e rate limiting.
	r := router.NewRouter(handlers, tokenSvc, cacheClient, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor WMS-Sub004 ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
