package mockapi

import "github.com/swaggo/swag"

const swaggerDoc = `{
  "swagger": "2.0",
  "info": {"title": "Storefront mock API", "version": "1.0"},
  "basePath": "/api",
  "paths": {
    "/auth/login": {"post": {"summary": "Login with email and password", "responses": {"200": {"description": "token"}}}},
    "/forms/{name}": {"post": {"summary": "Submit a form, validated with the client rule set", "responses": {"201": {"description": "saved"}, "422": {"description": "field errors"}}}},
    "/guest/cart": {"get": {"summary": "List guest cart"}, "post": {"summary": "Add to guest cart"}, "delete": {"summary": "Clear guest cart"}},
    "/guest/cart/{productId}": {"patch": {"summary": "Update quantity"}, "delete": {"summary": "Remove item"}},
    "/cart": {"get": {"summary": "List cart"}, "post": {"summary": "Add to cart"}, "delete": {"summary": "Clear cart"}},
    "/cart/count": {"get": {"summary": "Cart item count"}},
    "/cart/{productId}": {"patch": {"summary": "Update quantity"}, "delete": {"summary": "Remove item"}},
    "/wishlist": {"get": {"summary": "List wishlist"}, "post": {"summary": "Add to wishlist"}, "delete": {"summary": "Clear wishlist"}},
    "/wishlist/count": {"get": {"summary": "Wishlist item count"}},
    "/wishlist/check/{productId}": {"get": {"summary": "Whether a product is in the wishlist"}},
    "/wishlist/{productId}": {"delete": {"summary": "Remove from wishlist"}}
  }
}`

type swaggerSpec struct{}

func (swaggerSpec) ReadDoc() string { return swaggerDoc }

func init() {
	swag.Register(swag.Name, swaggerSpec{})
}
