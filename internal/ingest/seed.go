package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// defaultFacts is the built-in corpus used to seed a fresh knowledge base.
var defaultFacts = []string{
	"The speed of light is approximately 299,792,458 meters per second.",
	"The first computer programmer was Ada Lovelace.",
	"The mitochondria is the powerhouse of the cell.",
	"A group of flamingos is called a 'flamboyance'.",
	"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still edible.",
	"The shortest war in history lasted 38 minutes between Britain and Zanzibar in 1896.",
	"Octopuses have three hearts and blue blood.",
	"The Eiffel Tower can be 15 cm taller during the summer due to thermal expansion of the iron.",
	"Artificial Intelligence (AI) refers to the simulation of human intelligence in machines.",
	"Machine Learning is a subset of AI that provides systems the ability to automatically learn and improve from experience.",
	"Deep Learning is a subset of machine learning based on artificial neural networks.",
	"The Great Wall of China is not visible from the moon with the naked eye.",
	"Bananas are berries, but strawberries are not.",
	"Water makes up about 71% of the Earth's surface.",
	"The human brain contains approximately 86 billion neurons.",
	"Quantum computing uses quantum bits, or qubits, which can exist in multiple states simultaneously.",
	"Blockchain is a decentralized ledger technology.",
	"The internet was originally called ARPANET.",
	"Git is a distributed version control system.",
	"Linux is a family of open-source Unix-like operating systems based on the Linux kernel.",
	"Docker is a set of platform as a service products that use OS-level virtualization to deliver software in containers.",
	"Kubernetes is an open-source container-orchestration system for automating application deployment, scaling, and management.",
}

// SeedDefaultKnowledge ingests the built-in fact corpus and returns a
// one-line summary for display by the front end. The facts go through the
// regular file pipeline so seeding exercises the same path as user uploads.
func (p *Pipeline) SeedDefaultKnowledge(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "seed-knowledge")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "seed_data.txt")
	var data []byte
	for _, fact := range defaultFacts {
		data = append(data, fact...)
		data = append(data, "\n\n"...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	log.Info().Int("facts", len(defaultFacts)).Msg("seeding knowledge base")
	n, err := p.Ingest(ctx, path)
	if err != nil {
		return "", fmt.Errorf("seeding failed: %w", err)
	}
	return fmt.Sprintf("seeded %d chunks from %d built-in facts", n, len(defaultFacts)), nil
}
