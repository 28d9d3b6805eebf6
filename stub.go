// Diagnostic-only stub; never used in the real repo.
package hdf5

type File struct{}
type Group struct{}
type Dataset struct{}
type Dataspace struct{}
type PropList struct{}
type Datatype struct{}
type PropType int

const F_ACC_TRUNC = 0
const P_DATASET_CREATE PropType = 0

func CreateFile(string, int) (*File, error)                 { return nil, nil }
func (*File) CreateGroup(string) (*Group, error)            { return nil, nil }
func (*File) Close() error                                  { return nil }
func (*Group) Close() error                                 { return nil }
func (*Dataset) Close() error                               { return nil }
func CreateSimpleDataspace(a, b []uint) (*Dataspace, error) { return nil, nil }
func (*Dataspace) Close() error                             { return nil }
func (*Dataspace) SelectHyperslab(a, b, c, d []uint) error  { return nil }
func NewPropList(PropType) (*PropList, error)               { return nil, nil }
func (*PropList) Close() error                              { return nil }
func (*PropList) SetChunk([]uint) error                     { return nil }
func (*PropList) SetDeflate(int) error                      { return nil }
func NewDatatypeFromValue(interface{}) (*Datatype, error)   { return nil, nil }
func (*Group) CreateDatasetWith(string, *Datatype, *Dataspace, *PropList) (*Dataset, error) {
	return nil, nil
}
func (*Dataset) Resize([]uint) error                                      { return nil }
func (*Dataset) Space() *Dataspace                                        { return nil }
func (*Dataset) WriteSubset(interface{}, *Dataspace, *Dataspace) error    { return nil }
