package domain

import (
	"time"
)

// Product representa o item principal do catálogo (a Entidade).
// Os níveis de embalagem de um produto são gerenciados pelo catálogo de
// embalagens (PackagingDefinition); o controle de estoque é feito por
// StockRecord, sempre denominado em um nível de embalagem.
type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"` // Stock Keeping Unit (código único de produto)
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Interfaces de Contrato (O CORAÇÃO DA ARQUITETURA LIMPA) ---

// ProductService é a interface que a camada de Serviço (Business Logic) DEVE implementar.
// Ela define o que o Handler (Camada API) pode pedir para a camada de Serviço fazer.
type ProductService interface {
	CreateProduct(ctx Context, product Product) (Product, error)
	GetProductByID(ctx Context, id string) (Product, error)
	ListProducts(ctx Context, filter ProductFilter) ([]Product, error)
}

// ProductRepository é a interface que a camada de Repositório (Data Access) DEVE implementar.
// Ela define o que a camada de Serviço (Service) pode pedir para a camada de Persistência (DB/Cache) fazer.
type ProductRepository interface {
	Save(ctx Context, product Product) (Product, error)
	FindByID(ctx Context, id string) (Product, error)
	FindAll(ctx Context, filter ProductFilter) ([]Product, error)
}

// --- Estruturas Auxiliares (Filtros e Contexto) ---

// ProductFilter define os parâmetros de busca e paginação.
type ProductFilter struct {
	Page       int
	Limit      int
	Name       string
	SKU        string
	ActiveOnly bool
}

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context".
type Context interface{}
