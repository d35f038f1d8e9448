package catalog

import (
	"context"
	"fmt"

	"catalogapi/internal/models"
)

func (p *Projector) sizes() []string {
	sizes := p.policies.imageSizes(p.settings.ImageSizes)
	if len(sizes) == 0 {
		return []string{"full"}
	}
	return sizes
}

func (p *Projector) sources(img *models.Image) Pairs {
	sizes := p.sizes()
	src := make(Pairs, 0, len(sizes))
	for _, size := range sizes {
		src = append(src, Pair{size, img.Src(size)})
	}
	return src
}

// images lists the featured image followed by the gallery. A product without
// any resolvable image gets the store placeholder.
func (p *Projector) images(ctx context.Context, prod *models.Product) ([]Image, error) {
	var ids []uint
	if prod.ImageID != 0 {
		ids = append(ids, prod.ImageID)
	}
	ids = append(ids, prod.GalleryImageIDs()...)

	found, err := p.source.Images(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load images of %d: %w", prod.ID, err)
	}

	var out []Image
	for position, id := range ids {
		img, ok := found[id]
		if !ok {
			continue
		}
		out = append(out, Image{
			ID:       img.ID,
			Src:      p.sources(&img),
			Name:     img.Title,
			Alt:      img.Alt,
			Position: position,
			Featured: position == 0,
		})
	}
	if len(out) == 0 {
		out = append(out, p.placeholder())
	}
	return out, nil
}

func (p *Projector) placeholder() Image {
	sizes := p.sizes()
	src := make(Pairs, 0, len(sizes))
	for _, size := range sizes {
		src = append(src, Pair{size, p.settings.PlaceholderImageURL})
	}
	return Image{
		Src:      src,
		Name:     "Placeholder",
		Alt:      "Placeholder",
		Featured: true,
	}
}
