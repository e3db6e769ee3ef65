package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"math/rand"
)

// Clustering parameters. Centroids are seeded from the first k points
// rather than randomly restarted, so results are deterministic but not
// globally optimal.
const (
	zoneCount          = 3
	kmeansIterations   = 12
	syntheticPointSize = 180
	rasterSampleGrid   = 24
)

// Broadcast luma weights (ITU-R BT.709) used as the canopy proxy when
// sampling a preview raster.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// ClusterZones partitions the area of interest into zoneCount spatial
// clusters. With a preview raster it samples pixels on a coarse stride;
// without one it synthesizes a deterministic point set from the feature
// vector. Member counts always sum to the number of points.
func ClusterZones(fv FeatureVector, preview image.Image) ZoneSummary {
	var points [][5]float64
	source := ZoneSourceSynthetic
	if preview != nil {
		points = rasterPoints(fv, preview)
		source = ZoneSourceRaster
	}
	if len(points) == 0 {
		points = syntheticPoints(fv)
		source = ZoneSourceSynthetic
	}

	clusters := kmeans(points, zoneCount, kmeansIterations)
	return ZoneSummary{K: len(clusters), Source: source, Clusters: clusters}
}

// rasterPoints samples the preview on a stride of dimension/24 per axis.
// Each sampled pixel becomes a 5-dimensional point: luma-derived canopy
// proxy, normalized x, normalized y, soil moisture, ET/10.
func rasterPoints(fv FeatureVector, preview image.Image) [][5]float64 {
	bounds := preview.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	strideX := max(1, w/rasterSampleGrid)
	strideY := max(1, h/rasterSampleGrid)

	soil := clamp01(fv.SoilMoistureMean)
	et := clamp01(fv.ETMean / 10)

	var points [][5]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += strideY {
		for x := bounds.Min.X; x < bounds.Max.X; x += strideX {
			r, g, b, _ := preview.At(x, y).RGBA()
			// RGBA returns 16-bit channels; normalize luma to [0,1].
			luma := (lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)) / 65535
			points = append(points, [5]float64{
				clamp01(luma),
				float64(x-bounds.Min.X) / float64(w),
				float64(y-bounds.Min.Y) / float64(h),
				soil,
				et,
			})
		}
	}
	return points
}

// clusterSeed derives a deterministic PRNG seed from the rounded feature
// values, so identical inputs always synthesize identical point sets.
func clusterSeed(fv FeatureVector) int64 {
	key := fmt.Sprintf("%.4f|%.4f|%.4f|%.4f", fv.NDVIMean, fv.NDVISpread, fv.SoilMoistureMean, fv.ETMean)
	digest := sha256.Sum256([]byte(key))
	return int64(binary.BigEndian.Uint64(digest[:8])) //nolint:gosec // deterministic seed, not crypto
}

// syntheticPoints fabricates a plausible point cloud around the observed
// statistics when no raster is available.
func syntheticPoints(fv FeatureVector) [][5]float64 {
	rng := rand.New(rand.NewSource(clusterSeed(fv))) //nolint:gosec // reproducibility is the point

	spread := math.Max(fv.NDVISpread, 0.05)
	points := make([][5]float64, syntheticPointSize)
	for i := range points {
		canopy := clamp01((fv.NDVIMean+1)/2 + (rng.Float64()-0.5)*spread)
		x := rng.Float64()
		y := rng.Float64()
		moisture := clamp01(fv.SoilMoistureMean + (rng.Float64()-0.5)*0.2)
		points[i] = [5]float64{canopy, x, y, moisture, clamp01(fv.ETMean / 10)}
	}
	return points
}

// kmeans runs Lloyd's algorithm with deterministic initialization: the
// first k points seed the centroids, then reassign-and-recompute for a
// fixed number of iterations. Empty clusters keep their previous centroid.
func kmeans(points [][5]float64, k, iterations int) []ZoneCluster {
	if len(points) == 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := make([][5]float64, k)
	copy(centroids, points[:k])

	assignments := make([]int, len(points))
	for iter := 0; iter < iterations; iter++ {
		for i, p := range points {
			assignments[i] = nearestCentroid(p, centroids)
		}

		sums := make([][5]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			for d := 0; d < 5; d++ {
				sums[c][d] += p[d]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < 5; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	members := make([]int, k)
	for _, c := range assignments {
		members[c]++
	}

	clusters := make([]ZoneCluster, k)
	for c := 0; c < k; c++ {
		var rounded [5]float64
		for d := 0; d < 5; d++ {
			rounded[d] = round4(centroids[c][d])
		}
		clusters[c] = ZoneCluster{ID: c + 1, Members: members[c], Centroid: rounded}
	}
	return clusters
}

// nearestCentroid returns the index of the closest centroid by squared
// Euclidean distance.
func nearestCentroid(p [5]float64, centroids [][5]float64) int {
	best, bestDist := 0, math.MaxFloat64
	for c, centroid := range centroids {
		dist := 0.0
		for d := 0; d < 5; d++ {
			diff := p[d] - centroid[d]
			dist += diff * diff
		}
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}
