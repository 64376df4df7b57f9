package engine

// MongoDB is a placeholder; it is listed in /engines but never selectable.
type MongoDB struct{}

func (MongoDB) ID() string          { return "mongodb" }
func (MongoDB) DisplayName() string { return "MongoDB" }
func (MongoDB) Supported() bool     { return false }
func (MongoDB) ServiceType() string { return "mongodb" }
func (MongoDB) DefaultPort() int    { return 27017 }

func (MongoDB) AddCommand(serverURL string, inst Instance) []string {
	return nil
}

func (MongoDB) VerifyDSN(inst Instance) (string, string) {
	return "", ""
}

func (MongoDB) PostSteps(inst Instance) []PostStep {
	return []PostStep{
		{
			Title:       "Not yet supported",
			Description: "MongoDB integration is not yet supported. Stay tuned for future updates.",
		},
	}
}
