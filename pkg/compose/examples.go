package compose

// ExampleGroup is a category of sample questions.
type ExampleGroup struct {
	Category string   `json:"category"`
	Queries  []string `json:"queries"`
}

var examples = []ExampleGroup{
	{
		Category: "General",
		Queries: []string{
			"What's the cluster overview?",
			"How is my cluster doing?",
			"Give me a summary of the cluster",
		},
	},
	{
		Category: "Pods",
		Queries: []string{
			"How many pods are running?",
			"Show me pods in the default namespace",
			"Are there any failed pods?",
			"List all running pods",
		},
	},
	{
		Category: "Nodes",
		Queries: []string{
			"List all nodes",
			"How many nodes are ready?",
			"What's the node status?",
			"Show me node information",
		},
	},
	{
		Category: "Namespaces",
		Queries: []string{
			"List all namespaces",
			"What namespaces exist?",
			"Show me the namespaces",
		},
	},
	{
		Category: "Services",
		Queries: []string{
			"Show me all services",
			"List services in kube-system namespace",
			"What services are exposed?",
		},
	},
}

// Examples returns the sample questions shown by every shell.
func Examples() []ExampleGroup {
	out := make([]ExampleGroup, len(examples))
	for i, g := range examples {
		out[i] = ExampleGroup{Category: g.Category, Queries: append([]string(nil), g.Queries...)}
	}
	return out
}
