package gcp

// ExamSolverPrompt is sent with every uploaded exam paper. The answer format it
// asks for is a request to the model; nothing downstream parses it.
const ExamSolverPrompt = `You are an expert tutor. I have attached a PDF containing questions.

Task:
1. Read all questions in the PDF.
2. Provide a solution for every single question.
3. Use simple, easy-to-understand language.
4. Format the output to be "Exam Ready":
   - **Question**: [Write the question]
   - **Answer**: [Clear answer]
   - **Key Concept**: [One sentence summary]
   - **Example**: [Real-world example if applicable]
5. If a diagram is needed, describe it clearly in text format like this: [Diagram: Description of visual].`

// DefaultModel is used when GENAI_MODEL is not set. Flash keeps latency low on
// multi-page documents.
const DefaultModel = "gemini-1.5-flash"
