package query

// Re-export read models from readmodel package so callers only import query
import "github.com/Tejash97/klassico-style-haven/internal/readmodel"

type CartItemReadModel = readmodel.CartItemReadModel
type CartReadModel = readmodel.CartReadModel
type ProductListReadModel = readmodel.ProductListReadModel
type ProductDetailReadModel = readmodel.ProductDetailReadModel
