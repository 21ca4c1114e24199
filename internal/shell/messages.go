package shell

import "fmt"

// Messages holds the operator-facing texts of the loop.
type Messages struct {
	Prompt string

	// NotFound is formatted with the missing file name.
	NotFound string

	Success string

	// Partial precedes the failed row indices, one per line.
	Partial string

	// PassFailed is formatted with the error of an aborted pass.
	PassFailed string
}

var messages = map[string]Messages{
	"ru": {
		Prompt:     "Введите название csv файла (без расширения): ",
		NotFound:   "Файла с именем %s не существует. Попробуйте еще раз",
		Success:    "Вся база была сконвертирована успешно",
		Partial:    "База сконвертирована, кроме строк: ",
		PassFailed: "Не удалось сконвертировать базу: %v",
	},
	"en": {
		Prompt:     "Enter the csv file name (without extension): ",
		NotFound:   "File %s does not exist. Try again",
		Success:    "The whole inventory was converted successfully",
		Partial:    "Inventory converted except rows: ",
		PassFailed: "Conversion failed: %v",
	},
}

// MessagesFor returns the texts for a language code. Unknown codes get
// the Russian texts.
func MessagesFor(language string) Messages {
	if m, ok := messages[language]; ok {
		return m
	}
	return messages["ru"]
}

func (m Messages) notFound(file string) string { return fmt.Sprintf(m.NotFound, file) }

func (m Messages) passFailed(err error) string { return fmt.Sprintf(m.PassFailed, err) }
