package domain

// Backend holds the connection material for one remote backend profile.
type Backend struct {
	PostgresDSN string
	AuthURL     string
	AuthAPIKey  string
	AssetBucket string
	AssetRegion string
}
