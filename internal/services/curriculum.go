package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"examforge/internal/models"
)

// CurriculumService serves the chapter lookup table behind /chapters.
// The built-in table covers the common classes; a JSON file in the same
// shape replaces it entirely when configured.
type CurriculumService struct {
	table []models.Chapter
}

// NewCurriculumService loads the optional override file. An empty path
// uses the built-in table; a broken file is an error so a typoed deploy
// does not silently serve the wrong syllabus.
func NewCurriculumService(path string) (*CurriculumService, error) {
	if path == "" {
		return &CurriculumService{table: defaultCurriculum}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	var table []models.Chapter
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return &CurriculumService{table: table}, nil
}

// Lookup filters the table. Empty class or subject matches everything;
// matching is case-insensitive on both fields.
func (s *CurriculumService) Lookup(class, subject string) []models.Chapter {
	class = strings.TrimSpace(class)
	subject = strings.ToLower(strings.TrimSpace(subject))
	var out []models.Chapter
	for _, row := range s.table {
		if class != "" && row.Class != class {
			continue
		}
		if subject != "" && !strings.Contains(strings.ToLower(row.Subject), subject) {
			continue
		}
		out = append(out, row)
	}
	return out
}

var defaultCurriculum = []models.Chapter{
	{Class: "8", Subject: "Mathematics", Chapters: []string{
		"Rational Numbers", "Linear Equations in One Variable", "Understanding Quadrilaterals",
		"Data Handling", "Squares and Square Roots", "Cubes and Cube Roots",
		"Comparing Quantities", "Algebraic Expressions", "Mensuration",
	}},
	{Class: "8", Subject: "Science", Chapters: []string{
		"Crop Production and Management", "Microorganisms", "Synthetic Fibres and Plastics",
		"Materials: Metals and Non-Metals", "Coal and Petroleum", "Combustion and Flame",
		"Cell Structure and Functions", "Force and Pressure", "Friction", "Sound",
	}},
	{Class: "9", Subject: "Mathematics", Chapters: []string{
		"Number Systems", "Polynomials", "Coordinate Geometry", "Linear Equations in Two Variables",
		"Lines and Angles", "Triangles", "Quadrilaterals", "Circles", "Surface Areas and Volumes",
		"Statistics", "Probability",
	}},
	{Class: "9", Subject: "Science", Chapters: []string{
		"Matter in Our Surroundings", "Is Matter Around Us Pure", "Atoms and Molecules",
		"Structure of the Atom", "The Fundamental Unit of Life", "Tissues",
		"Motion", "Force and Laws of Motion", "Gravitation", "Work and Energy", "Sound",
	}},
	{Class: "10", Subject: "Mathematics", Chapters: []string{
		"Real Numbers", "Polynomials", "Pair of Linear Equations in Two Variables",
		"Quadratic Equations", "Arithmetic Progressions", "Triangles", "Coordinate Geometry",
		"Introduction to Trigonometry", "Applications of Trigonometry", "Circles",
		"Areas Related to Circles", "Surface Areas and Volumes", "Statistics", "Probability",
	}},
	{Class: "10", Subject: "Physics", Chapters: []string{
		"Light: Reflection and Refraction", "The Human Eye and the Colourful World",
		"Electricity", "Magnetic Effects of Electric Current", "Sources of Energy",
	}},
	{Class: "10", Subject: "Chemistry", Chapters: []string{
		"Chemical Reactions and Equations", "Acids, Bases and Salts", "Metals and Non-Metals",
		"Carbon and its Compounds", "Periodic Classification of Elements",
	}},
	{Class: "10", Subject: "Biology", Chapters: []string{
		"Life Processes", "Control and Coordination", "How do Organisms Reproduce",
		"Heredity and Evolution", "Our Environment",
	}},
	{Class: "10", Subject: "Social Studies", Chapters: []string{
		"The Rise of Nationalism in Europe", "Nationalism in India", "Resources and Development",
		"Agriculture", "Power Sharing", "Federalism", "Development", "Sectors of the Indian Economy",
	}},
	{Class: "10", Subject: "English", Chapters: []string{
		"A Letter to God", "Nelson Mandela: Long Walk to Freedom", "Two Stories about Flying",
		"From the Diary of Anne Frank", "The Hundred Dresses", "Glimpses of India",
	}},
	{Class: "12", Subject: "Mathematics", Chapters: []string{
		"Relations and Functions", "Inverse Trigonometric Functions", "Matrices", "Determinants",
		"Continuity and Differentiability", "Applications of Derivatives", "Integrals",
		"Differential Equations", "Vector Algebra", "Three Dimensional Geometry", "Probability",
	}},
	{Class: "12", Subject: "Physics", Chapters: []string{
		"Electric Charges and Fields", "Electrostatic Potential and Capacitance", "Current Electricity",
		"Moving Charges and Magnetism", "Electromagnetic Induction", "Ray Optics", "Wave Optics",
		"Dual Nature of Radiation and Matter", "Atoms", "Nuclei", "Semiconductor Electronics",
	}},
	{Class: "12", Subject: "Chemistry", Chapters: []string{
		"Solutions", "Electrochemistry", "Chemical Kinetics", "The d- and f-Block Elements",
		"Coordination Compounds", "Haloalkanes and Haloarenes", "Alcohols, Phenols and Ethers",
		"Aldehydes, Ketones and Carboxylic Acids", "Amines", "Biomolecules",
	}},
}
