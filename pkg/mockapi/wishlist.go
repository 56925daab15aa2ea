package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listWishlist(c *gin.Context) {
	s.mu.Lock()
	items := cloneItems(s.wishlists[bucket(c)])
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (s *Server) countWishlist(c *gin.Context) {
	s.mu.Lock()
	count := len(s.wishlists[bucket(c)])
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (s *Server) checkWishlist(c *gin.Context) {
	productID, ok := productParam(c)
	if !ok {
		return
	}
	s.mu.Lock()
	_, it := findItem(s.wishlists[bucket(c)], productID)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "in_wishlist": it != nil})
}

// addWishlist 已收藏时同样返回成功，added 为 false
func (s *Server) addWishlist(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "product_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[req.ProductID]
	if !ok {
		reject(c, http.StatusBadRequest, "Product not found")
		return
	}
	key := bucket(c)
	_, it := findItem(s.wishlists[key], req.ProductID)
	added := it == nil
	message := "Product already in wishlist"
	if added {
		it = &item{ID: s.nextItemID(), ProductID: p.ID, Name: p.Name, Price: p.Price}
		s.wishlists[key] = append(s.wishlists[key], it)
		message = "Product added to wishlist"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"added":          added,
		"message":        message,
		"item":           *it,
		"wishlist_count": len(s.wishlists[key]),
	})
}

func (s *Server) removeWishlist(c *gin.Context) {
	productID, ok := productParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := bucket(c)
	if i, it := findItem(s.wishlists[key], productID); it != nil {
		s.wishlists[key] = append(s.wishlists[key][:i], s.wishlists[key][i+1:]...)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Product removed from wishlist",
		"wishlist_count": len(s.wishlists[key]),
	})
}

func (s *Server) clearWishlist(c *gin.Context) {
	s.mu.Lock()
	delete(s.wishlists, bucket(c))
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
