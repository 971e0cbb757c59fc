package entity

// Form is the host's view of one modal form: its inputs, their values,
// the inline error annotations and whether the modal is open.
// A Form belongs to one host goroutine.
type Form struct {
	ID     string
	inputs map[string]bool
	values map[string]string
	notes  map[string]string
	open   bool
}

// NewForm returns an open form with the given inputs.
func NewForm(id string, inputs ...string) *Form {
	f := &Form{
		ID:     id,
		inputs: make(map[string]bool, len(inputs)),
		values: make(map[string]string),
		notes:  make(map[string]string),
		open:   true,
	}
	for _, in := range inputs {
		f.inputs[in] = true
	}
	return f
}

// Set sets the value of a field. Hidden fields (action, ids) need not be inputs.
func (f *Form) Set(field, value string) *Form {
	f.values[field] = value
	return f
}

func (f *Form) Get(field string) string { return f.values[field] }

func (f *Form) HasInput(field string) bool { return f.inputs[field] }

// Values returns a copy of the form values.
func (f *Form) Values() map[string]string {
	vals := make(map[string]string, len(f.values))
	for k, v := range f.values {
		vals[k] = v
	}
	return vals
}

// Annotate marks every field of errs that has an input in this form.
// Fields without a matching input are skipped; the annotated field names are returned.
func (f *Form) Annotate(errs map[string]string) []string {
	var annotated []string
	for field, msg := range errs {
		if !f.inputs[field] {
			continue
		}
		f.notes[field] = msg
		annotated = append(annotated, field)
	}
	return annotated
}

// Annotation returns the inline error shown next to field.
func (f *Form) Annotation(field string) (string, bool) {
	msg, ok := f.notes[field]
	return msg, ok
}

func (f *Form) Annotations() map[string]string {
	notes := make(map[string]string, len(f.notes))
	for k, v := range f.notes {
		notes[k] = v
	}
	return notes
}

func (f *Form) ClearAnnotations() {
	f.notes = make(map[string]string)
}

func (f *Form) IsOpen() bool { return f.open }

func (f *Form) Open() { f.open = true }

func (f *Form) Close() { f.open = false }
