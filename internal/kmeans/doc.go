// Package kmeans implements k-means clustering with squared L2 distance.
//
// Used to train partition centroids for generated databases.
package kmeans
