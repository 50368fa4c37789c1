package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадры *image.RGBA одного размера между воркерами
// рендеринга, снижая нагрузку на GC.
type ImagePool struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// Get возвращает кадр размера w x h. Содержимое не очищается:
// рендерер перерисовывает кадр целиком.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	return p.pool(image.Pt(w, h)).Get().(*image.RGBA)
}

// Put возвращает кадр в пул
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool, ok := p.pools[size]
	if !ok {
		pool = &sync.Pool{
			New: func() any {
				return image.NewRGBA(image.Rectangle{Max: size})
			},
		}
		p.pools[size] = pool
	}
	return pool
}
